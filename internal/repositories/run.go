package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/songrec/internal/models"
	"github.com/desertthunder/songrec/internal/shared"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// RunRepository implements models.Repository[*models.Run] for recommendation history.
//
// The display list and the URI list live in child tables keyed by position.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run and its tracks with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (id, sequence, engine, seed, playlist_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, id, sequence, run.Engine(), run.Seed(), run.PlaylistName(), run.CreatedAt(), run.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertLines(tx, id, run.Tracks(), run.URIs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

func insertLines(tx *sql.Tx, runID string, tracks, uris []string) error {
	for i, display := range tracks {
		if _, err := tx.Exec("INSERT INTO run_tracks (run_id, position, display) VALUES (?, ?, ?)", runID, i, display); err != nil {
			return fmt.Errorf("failed to insert run track: %w", err)
		}
	}
	for i, uri := range uris {
		if _, err := tx.Exec("INSERT INTO run_uris (run_id, position, uri) VALUES (?, ?, ?)", runID, i, uri); err != nil {
			return fmt.Errorf("failed to insert run uri: %w", err)
		}
	}
	return nil
}

// Get retrieves a run with its tracks, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, engine, seed, playlist_name, created_at, updated_at, deleted_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	run, err := r.scan(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: run %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetBySequence retrieves a run by its sequence number, the id shown to users.
func (r *RunRepository) GetBySequence(sequence int) (*models.Run, error) {
	var id string
	err := r.db.QueryRow("SELECT id FROM runs WHERE sequence = ? AND deleted_at IS NULL", sequence).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: run #%d", shared.ErrRecordNotFound, sequence)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return r.Get(id)
}

// Update renames a run and replaces its tracks
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE runs
		SET playlist_name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, run.PlaylistName(), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run not found or already deleted: %s", shared.ErrRecordNotFound, run.ID())
	}

	if _, err := tx.Exec("DELETE FROM run_tracks WHERE run_id = ?", run.ID()); err != nil {
		return fmt.Errorf("failed to clear run tracks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM run_uris WHERE run_id = ?", run.ID()); err != nil {
		return fmt.Errorf("failed to clear run uris: %w", err)
	}
	if err := insertLines(tx, run.ID(), run.Tracks(), run.URIs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run not found or already deleted: %s", shared.ErrRecordNotFound, id)
	}

	return nil
}

// List retrieves runs newest first, excluding soft-deleted runs.
//
// Supported criteria: "engine" (string) and "limit" (int). Listed runs carry
// their tracks.
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT id, sequence, engine, seed, playlist_name, created_at, updated_at, deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if engine, ok := criteria["engine"].(string); ok && engine != "" {
		query += " AND engine = ?"
		args = append(args, engine)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		if err := r.loadLines(run); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// scan reads one runs row. sql.ErrNoRows is returned unwrapped.
func (r *RunRepository) scan(row scanner) (*models.Run, error) {
	var (
		id           string
		sequence     int
		engine       string
		seed         string
		playlistName string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &engine, &seed, &playlistName, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(sequence, engine, seed, playlistName, nil, nil)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func (r *RunRepository) loadLines(run *models.Run) error {
	tracks, err := r.column("SELECT display FROM run_tracks WHERE run_id = ? ORDER BY position ASC", run.ID())
	if err != nil {
		return fmt.Errorf("failed to load run tracks: %w", err)
	}
	uris, err := r.column("SELECT uri FROM run_uris WHERE run_id = ? ORDER BY position ASC", run.ID())
	if err != nil {
		return fmt.Errorf("failed to load run uris: %w", err)
	}
	run.SetTracks(tracks)
	run.SetURIs(uris)
	return nil
}

func (r *RunRepository) column(query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
