package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/songrec/internal/models"
	"github.com/desertthunder/songrec/internal/shared"
)

// PublishedPlaylistRepository implements models.Repository[*models.PublishedPlaylist].
type PublishedPlaylistRepository struct {
	db *sql.DB
}

// NewPublishedPlaylistRepository creates a new PublishedPlaylistRepository with the given database connection
func NewPublishedPlaylistRepository(db *sql.DB) *PublishedPlaylistRepository {
	return &PublishedPlaylistRepository{db: db}
}

const publishedColumns = `id, sequence, run_id, platform, remote_id, name, item_count, created_at, updated_at, deleted_at`

// Create inserts a published playlist with generated ID and sequence
func (r *PublishedPlaylistRepository) Create(p *models.PublishedPlaylist) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "published_playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	var runID any = p.RunID()
	if runID == "" {
		runID = nil
	}

	query := `
		INSERT INTO published_playlists (id, sequence, run_id, platform, remote_id, name, item_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, id, sequence, runID, p.Platform(), p.RemoteID(), p.Name(), p.ItemCount(), p.CreatedAt(), p.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert published playlist: %w", err)
	}

	p.SetID(id)
	p.SetSequence(sequence)
	return nil
}

// Get retrieves a published playlist by ID, excluding soft-deleted rows
func (r *PublishedPlaylistRepository) Get(id string) (*models.PublishedPlaylist, error) {
	query := "SELECT " + publishedColumns + " FROM published_playlists WHERE id = ? AND deleted_at IS NULL"

	p, err := r.scan(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: published playlist %s", shared.ErrRecordNotFound, id)
	}
	return p, err
}

// Update stores a new item count
func (r *PublishedPlaylistRepository) Update(p *models.PublishedPlaylist) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	result, err := r.db.Exec(`
		UPDATE published_playlists
		SET item_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, p.ItemCount(), now, p.ID())
	if err != nil {
		return fmt.Errorf("failed to update published playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: published playlist not found or already deleted: %s", shared.ErrRecordNotFound, p.ID())
	}

	p.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a published playlist by ID
func (r *PublishedPlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE published_playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete published playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: published playlist not found or already deleted: %s", shared.ErrRecordNotFound, id)
	}

	return nil
}

// List retrieves published playlists in creation order.
//
// Supported criteria: "run_id", "platform" and "remote_id" (all strings).
func (r *PublishedPlaylistRepository) List(criteria map[string]any) ([]*models.PublishedPlaylist, error) {
	query := "SELECT " + publishedColumns + " FROM published_playlists WHERE deleted_at IS NULL"
	args := []any{}

	for _, column := range []string{"run_id", "platform", "remote_id"} {
		if v, ok := criteria[column].(string); ok && v != "" {
			query += " AND " + column + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query published playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PublishedPlaylist
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

func (r *PublishedPlaylistRepository) scan(row scanner) (*models.PublishedPlaylist, error) {
	var (
		id        string
		sequence  int
		runID     sql.NullString
		platform  string
		remoteID  string
		name      string
		itemCount int
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &platform, &remoteID, &name, &itemCount, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan published playlist: %w", err)
	}

	p := models.NewPublishedPlaylist(sequence, runID.String, platform, remoteID, name, itemCount)
	p.SetID(id)
	p.SetCreatedAt(createdAt)
	p.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		p.SetDeletedAt(&deletedAt.Time)
	}

	return p, nil
}
