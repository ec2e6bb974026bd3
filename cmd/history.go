package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/songrec/internal/models"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/urfave/cli/v3"
)

// RunSummary is the JSON view of a recorded run.
type RunSummary struct {
	ID           string    `json:"id"`
	Sequence     int       `json:"sequence"`
	Engine       string    `json:"engine"`
	Seed         string    `json:"seed,omitempty"`
	PlaylistName string    `json:"playlist_name"`
	Tracks       []string  `json:"tracks"`
	URIs         []string  `json:"uris"`
	CreatedAt    time.Time `json:"created_at"`
}

func summarize(run *models.Run) RunSummary {
	return RunSummary{
		ID:           run.ID(),
		Sequence:     run.Sequence(),
		Engine:       run.Engine(),
		Seed:         run.Seed(),
		PlaylistName: run.PlaylistName(),
		Tracks:       run.Tracks(),
		URIs:         run.URIs(),
		CreatedAt:    run.CreatedAt(),
	}
}

func (r *Runner) requireHistory(ctx context.Context) error {
	r.connect(ctx)
	if r.history == nil {
		return fmt.Errorf("%w: history database unavailable at %s", shared.ErrServiceUnavailable, r.config.Database.Path)
	}
	return nil
}

// HistoryList prints recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(ctx); err != nil {
		return err
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if engine := cmd.String("engine"); engine != "" {
		criteria["engine"] = engine
	}

	runs, err := r.history.Runs.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		summaries := make([]RunSummary, 0, len(runs))
		for _, run := range runs {
			summaries = append(summaries, summarize(run))
		}
		return r.writeJSON(summaries, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet.\n")
	}

	r.writePlain("%-5s %-10s %-30s %-7s %s\n", "#", "ENGINE", "PLAYLIST", "TRACKS", "CREATED")
	for _, run := range runs {
		r.writePlain("%-5d %-10s %-30s %-7d %s\n",
			run.Sequence(), run.Engine(), truncate(run.PlaylistName(), 30), len(run.Tracks()),
			run.CreatedAt().Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// HistoryShow prints one run with its tracks and published playlists.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(ctx); err != nil {
		return err
	}

	run, err := r.findRun(cmd.StringArg("run"))
	if err != nil {
		return err
	}

	published, err := r.history.Published.List(map[string]any{"run_id": run.ID()})
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d: %s", run.Sequence(), run.PlaylistName()))
	r.writePlain("ID: %s\n", run.ID())
	r.writePlain("Engine: %s\n", shared.Capitalize(run.Engine()))
	if run.Seed() != "" {
		r.writePlain("Seed: %s\n", run.Seed())
	}
	r.writePlain("Created: %s\n\n", run.CreatedAt().Local().Format(time.RFC1123))

	for i, track := range run.Tracks() {
		r.writePlain("%3d. %s\n", i+1, track)
	}

	if len(published) > 0 {
		r.writePlainln("Published:")
		for _, p := range published {
			r.writePlain("  %s playlist %s (%d items)\n", shared.Capitalize(p.Platform()), p.RemoteID(), p.ItemCount())
		}
	}
	return nil
}

// HistoryDelete soft-deletes a run.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(ctx); err != nil {
		return err
	}

	run, err := r.findRun(cmd.StringArg("run"))
	if err != nil {
		return err
	}

	if err := r.history.Runs.Delete(run.ID()); err != nil {
		return err
	}

	r.logger.Info("run deleted", "id", run.ID())
	return r.writePlain("✓ Deleted run #%d (%s)\n", run.Sequence(), run.PlaylistName())
}

// findRun resolves a run by sequence number or id.
func (r *Runner) findRun(ref string) (*models.Run, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: run id or sequence number", shared.ErrMissingArgument)
	}
	if seq, err := strconv.Atoi(ref); err == nil {
		return r.history.Runs.GetBySequence(seq)
	}
	return r.history.Runs.Get(ref)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
