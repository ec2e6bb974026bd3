package models

import (
	"fmt"

	"github.com/desertthunder/songrec/internal/shared"
)

// PublishedPlaylist records a playlist created or extended on a platform.
type PublishedPlaylist struct {
	Entity
	runID     string
	platform  string
	remoteID  string
	name      string
	itemCount int
}

// NewPublishedPlaylist creates a PublishedPlaylist. runID may be empty when the
// batch was never recorded.
func NewPublishedPlaylist(sequence int, runID, platform, remoteID, name string, itemCount int) *PublishedPlaylist {
	return &PublishedPlaylist{
		Entity:    newEntity(sequence),
		runID:     runID,
		platform:  platform,
		remoteID:  remoteID,
		name:      name,
		itemCount: itemCount,
	}
}

func (p *PublishedPlaylist) RunID() string    { return p.runID }
func (p *PublishedPlaylist) Platform() string { return p.platform }
func (p *PublishedPlaylist) RemoteID() string { return p.remoteID }
func (p *PublishedPlaylist) Name() string     { return p.name }
func (p *PublishedPlaylist) ItemCount() int   { return p.itemCount }

func (p *PublishedPlaylist) SetItemCount(n int) { p.itemCount = n }

func (p *PublishedPlaylist) Validate() error {
	switch {
	case p.platform == "":
		return fmt.Errorf("%w: platform is required", shared.ErrInvalidInput)
	case p.remoteID == "":
		return fmt.Errorf("%w: remote playlist id is required", shared.ErrInvalidInput)
	case p.name == "":
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	case p.itemCount < 0:
		return fmt.Errorf("%w: item count cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}
