package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/songrec/internal/shared"
)

// Run is one recorded recommendation batch.
//
// Tracks and URIs are stored separately because engines may order them independently.
type Run struct {
	Entity
	engine       string
	seed         string
	playlistName string
	tracks       []string
	uris         []string
}

// NewRun creates a Run. The id is assigned by the repository.
func NewRun(sequence int, engine, seed, playlistName string, tracks, uris []string) *Run {
	return &Run{
		Entity:       newEntity(sequence),
		engine:       engine,
		seed:         seed,
		playlistName: playlistName,
		tracks:       tracks,
		uris:         uris,
	}
}

func (r *Run) Engine() string       { return r.engine }
func (r *Run) Seed() string         { return r.seed }
func (r *Run) PlaylistName() string { return r.playlistName }
func (r *Run) Tracks() []string     { return r.tracks }
func (r *Run) URIs() []string       { return r.uris }

func (r *Run) SetPlaylistName(name string) { r.playlistName = name }
func (r *Run) SetTracks(tracks []string)   { r.tracks = tracks }
func (r *Run) SetURIs(uris []string)       { r.uris = uris }

// Validate requires an engine and a playlist name.
func (r *Run) Validate() error {
	if strings.TrimSpace(r.engine) == "" {
		return fmt.Errorf("%w: run engine is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(r.playlistName) == "" {
		return fmt.Errorf("%w: run playlist name is required", shared.ErrInvalidInput)
	}
	return nil
}
