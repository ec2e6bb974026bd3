package recommend

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
	tu "github.com/desertthunder/songrec/internal/testing"
)

func tagTracks(prefix string, n int) []services.TagTrack {
	tracks := make([]services.TagTrack, n)
	for i := range tracks {
		tracks[i] = services.TagTrack{Name: fmt.Sprintf("%s song %d", prefix, i+1), Artist: prefix + " artist"}
	}
	return tracks
}

// uriFor resolves every query to a stable fake URI.
func uriFor(query string) string {
	return "spotify:track:" + strings.NewReplacer(" ", "-", `"`, "", ":", "").Replace(query)
}

func testDeps(sim *tu.MockSimilarity, cat *tu.MockCatalog) Deps {
	return Deps{
		Similarity: sim,
		Catalog:    cat,
		Logger:     shared.NewLogger(io.Discard),
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Now:        func() time.Time { return time.Date(2024, time.June, 15, 14, 0, 0, 0, time.UTC) },
	}
}

func assertNoDuplicates(t *testing.T, items []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, item := range items {
		if seen[item] {
			t.Errorf("duplicate entry %q", item)
		}
		seen[item] = true
	}
}

func TestNew(t *testing.T) {
	deps := testDeps(&tu.MockSimilarity{}, &tu.MockCatalog{})

	for _, name := range Engines {
		t.Run(name, func(t *testing.T) {
			engine, err := New(name, deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if engine.Name() != name {
				t.Errorf("expected engine %s, got %s", name, engine.Name())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := New("mood", deps); !errors.Is(err, shared.ErrUnknownEngine) {
			t.Errorf("expected ErrUnknownEngine, got %v", err)
		}
	})
}

func TestSendProgress(t *testing.T) {
	t.Run("nil channel", func(t *testing.T) {
		sendProgress(nil, ProgressUpdate{Message: "ignored"})
	})

	t.Run("full channel does not block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		sendProgress(ch, ProgressUpdate{Message: "first"})
		sendProgress(ch, ProgressUpdate{Message: "second"})

		got := tu.Drain(ch)
		if len(got) != 1 || got[0].Message != "first" {
			t.Errorf("expected only the first update, got %v", got)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tc := []struct {
		phase Phase
		want  string
	}{
		{FetchSimilar, "fetch_similar"},
		{FetchTopTracks, "fetch_top_tracks"},
		{ResolveURIs, "resolve_uris"},
		{FetchTopArtists, "fetch_top_artists"},
		{FetchArtistTracks, "fetch_artist_tracks"},
		{LocateCaller, "locate_caller"},
		{FetchWeather, "fetch_weather"},
		{PickGenre, "pick_genre"},
		{Complete, "complete"},
		{Phase(99), ""},
	}
	for _, tt := range tc {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
