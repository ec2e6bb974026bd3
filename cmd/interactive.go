package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/recommend"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/desertthunder/songrec/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetLogger replaces the logger used by the runner and every client it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Interactive launches the terminal driver.
//
// Logs go to --log-file while the UI owns the terminal.
func (r *Runner) Interactive(ctx context.Context, cmd *cli.Command) error {
	fileLogger, logFile, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return err
	}
	defer logFile.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	r.connect(ctx)
	if err := r.requireEngines(); err != nil {
		return err
	}

	r.preflight(ctx)

	engines, err := r.engines()
	if err != nil {
		return err
	}

	return ui.Run(ctx, ui.Opts{
		Engines:   engines,
		Albums:    recommend.NewAlbumPicker(r.deps()),
		Publisher: r.publisher,
		History:   r.history,
		Logger:    shared.WithLogger(r.logger, "component", "ui"),
	})
}

// preflight checks both publishing sessions. Failures are reported and never stop the driver.
func (r *Runner) preflight(ctx context.Context) {
	if user, err := r.selfTest(ctx); err != nil {
		r.logger.Warn("spotify self-test failed", "error", err)
		r.writePlain("⚠ Spotify session unavailable (%v); publishing to Spotify will fail.\n", err)
	} else {
		r.logger.Info("spotify self-test passed", "user", user)
		r.writePlain("Logged in to Spotify as %s\n", user)
	}

	if title, err := r.channelTitle(ctx); err != nil {
		r.logger.Warn("youtube self-test failed", "error", err)
		r.writePlain("⚠ YouTube session unavailable (%v); publishing to YouTube will fail.\n", err)
	} else {
		r.logger.Info("youtube self-test passed", "channel", title)
		r.writePlain("Logged in to YouTube as %s\n", title)
	}
}
