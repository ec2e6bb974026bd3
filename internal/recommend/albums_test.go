package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
	tu "github.com/desertthunder/songrec/internal/testing"
)

func TestAlbumPicker(t *testing.T) {
	ctx := context.Background()

	t.Run("picks from the library", func(t *testing.T) {
		albums := make([]services.Album, 40)
		names := map[string]bool{}
		for i := range albums {
			albums[i] = services.Album{ID: fmt.Sprintf("a%d", i), Name: fmt.Sprintf("Album %d", i), Artists: []string{"Artist"}}
			names[albums[i].Name] = true
		}
		cat := &tu.MockCatalog{Albums: albums}
		picker := NewAlbumPicker(testDeps(&tu.MockSimilarity{}, cat))

		album, err := picker.Pick(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !names[album.Name] {
			t.Errorf("picked album %q is not in the library", album.Name)
		}
		if albums[0].Name != "Album 0" || albums[39].Name != "Album 39" {
			t.Error("expected the library slice to be left untouched")
		}
	})

	t.Run("single album", func(t *testing.T) {
		cat := &tu.MockCatalog{Albums: []services.Album{{Name: "Only"}}}
		album, err := NewAlbumPicker(testDeps(&tu.MockSimilarity{}, cat)).Pick(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if album.Name != "Only" {
			t.Errorf("expected Only, got %s", album.Name)
		}
	})

	t.Run("empty library", func(t *testing.T) {
		_, err := NewAlbumPicker(testDeps(&tu.MockSimilarity{}, &tu.MockCatalog{})).Pick(ctx)
		if !errors.Is(err, shared.ErrNoSavedAlbums) {
			t.Errorf("expected ErrNoSavedAlbums, got %v", err)
		}
	})

	t.Run("catalog failure", func(t *testing.T) {
		cat := &tu.MockCatalog{AlbumsErr: shared.ErrNotAuthenticated}
		_, err := NewAlbumPicker(testDeps(&tu.MockSimilarity{}, cat)).Pick(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestAlbumLine(t *testing.T) {
	tc := []struct {
		album services.Album
		want  string
	}{
		{services.Album{Name: "Blue", Artists: []string{"Joni Mitchell"}}, "Blue - Joni Mitchell"},
		{services.Album{Name: "Watch the Throne", Artists: []string{"JAY-Z", "Kanye West"}}, "Watch the Throne - JAY-Z, Kanye West"},
		{services.Album{Name: "Untitled"}, "Untitled - "},
	}
	for _, tt := range tc {
		if got := AlbumLine(tt.album); got != tt.want {
			t.Errorf("AlbumLine() = %q, want %q", got, tt.want)
		}
	}
}
