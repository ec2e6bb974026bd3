// Package repositories implements SQLite persistence for the recommendation history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : recommendation batches with their display and URI lists
//   - [PublishedPlaylistRepository] : playlists created or extended by the publisher
//   - [HistoryRecorder] : best-effort recording used by the CLI
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
