package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/songrec/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// newApp builds the command tree around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songrec",
		Usage:   "Music recommendations from tags, taste, seasons and weather",
		Version: "0.1.0",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Optional .env file with credential overrides",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		}, interactiveFlags()...),
		Before:   r.load,
		Action:   r.Interactive,
		Commands: r.register(),
	}
}
