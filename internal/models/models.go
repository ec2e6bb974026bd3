package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations are [Run] and [PublishedPlaylist].
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Entity holds the identity and lifecycle fields shared by every persistent model.
type Entity struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func newEntity(sequence int) Entity {
	now := time.Now()
	return Entity{sequence: sequence, createdAt: now, updatedAt: now}
}

func (e *Entity) ID() string                { return e.id }
func (e *Entity) SetID(id string)           { e.id = id }
func (e *Entity) Sequence() int             { return e.sequence }
func (e *Entity) SetSequence(seq int)       { e.sequence = seq }
func (e *Entity) CreatedAt() time.Time      { return e.createdAt }
func (e *Entity) SetCreatedAt(t time.Time)  { e.createdAt = t }
func (e *Entity) UpdatedAt() time.Time      { return e.updatedAt }
func (e *Entity) SetUpdatedAt(t time.Time)  { e.updatedAt = t }
func (e *Entity) DeletedAt() *time.Time     { return e.deletedAt }
func (e *Entity) SetDeletedAt(t *time.Time) { e.deletedAt = t }

// IsDeleted reports whether the entity has been soft-deleted.
func (e *Entity) IsDeleted() bool { return e.deletedAt != nil }
