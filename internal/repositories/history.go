package repositories

import (
	"database/sql"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/models"
	"github.com/desertthunder/songrec/internal/publish"
	"github.com/desertthunder/songrec/internal/recommend"
)

// HistoryRecorder stores recommendation runs and publish outcomes.
//
// Recording is best effort: failures are logged and never returned. A nil
// recorder records nothing, so callers need no database checks.
type HistoryRecorder struct {
	Runs      *RunRepository
	Published *PublishedPlaylistRepository
	logger    *log.Logger
}

// NewHistoryRecorder creates a recorder over db.
func NewHistoryRecorder(db *sql.DB, logger *log.Logger) *HistoryRecorder {
	if logger == nil {
		logger = log.Default()
	}
	return &HistoryRecorder{
		Runs:      NewRunRepository(db),
		Published: NewPublishedPlaylistRepository(db),
		logger:    logger.With("component", "history"),
	}
}

// RecordRun saves a recommendation batch and returns its id, or "" when it was not saved.
func (h *HistoryRecorder) RecordRun(result *recommend.Result) string {
	if h == nil || result == nil {
		return ""
	}

	run := models.NewRun(0, result.Engine, result.Seed, result.PlaylistName, result.Tracks, result.URIs)
	if err := h.Runs.Create(run); err != nil {
		h.logger.Warn("failed to record run", "engine", result.Engine, "error", err)
		return ""
	}

	h.logger.Debug("recorded run", "id", run.ID(), "sequence", run.Sequence())
	return run.ID()
}

// RecordPublish saves every platform that produced a playlist. runID may be empty.
func (h *HistoryRecorder) RecordPublish(runID string, result *publish.Result) {
	if h == nil || result == nil {
		return
	}

	for _, pr := range result.Platforms {
		if pr.PlaylistID == "" {
			continue
		}
		p := models.NewPublishedPlaylist(0, runID, pr.Platform, pr.PlaylistID, result.Name, pr.Added)
		if err := h.Published.Create(p); err != nil {
			h.logger.Warn("failed to record published playlist", "platform", pr.Platform, "error", err)
		}
	}
}
