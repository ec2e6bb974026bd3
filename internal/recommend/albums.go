package recommend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
)

const (
	savedAlbumFetch  = 50
	savedAlbumSample = 15
)

// AlbumPicker chooses a random album from the user's library.
type AlbumPicker struct {
	catalog services.CatalogClient
	rng     *rand.Rand
}

// NewAlbumPicker creates a picker over the catalog's saved albums.
func NewAlbumPicker(deps Deps) *AlbumPicker {
	deps = deps.withDefaults()
	return &AlbumPicker{catalog: deps.Catalog, rng: deps.Rand}
}

// Pick fetches up to 50 saved albums, samples 15 of them and returns one.
func (p *AlbumPicker) Pick(ctx context.Context) (*services.Album, error) {
	albums, err := p.catalog.UserSavedAlbums(ctx, savedAlbumFetch)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved albums: %w", err)
	}
	if len(albums) == 0 {
		return nil, shared.ErrNoSavedAlbums
	}

	sample := make([]services.Album, len(albums))
	copy(sample, albums)
	p.rng.Shuffle(len(sample), func(i, j int) { sample[i], sample[j] = sample[j], sample[i] })
	sample = sample[:min(savedAlbumSample, len(sample))]

	album := sample[p.rng.IntN(len(sample))]
	return &album, nil
}

// AlbumLine renders an album as "name - artist1, artist2".
func AlbumLine(a services.Album) string {
	return a.Name + " - " + strings.Join(a.Artists, ", ")
}
