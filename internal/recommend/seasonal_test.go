package recommend

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songrec/internal/services"
	tu "github.com/desertthunder/songrec/internal/testing"
)

func TestMomentOf(t *testing.T) {
	tc := []struct {
		name string
		at   time.Time
		want Moment
	}{
		{name: "june afternoon", at: time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC), want: Moment{"summer", "afternoon"}},
		{name: "christmas day", at: time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC), want: Moment{"christmas", "morning"}},
		{name: "christmas eve", at: time.Date(2024, 12, 24, 22, 0, 0, 0, time.UTC), want: Moment{"winter", "night"}},
		{name: "new year small hours", at: time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC), want: Moment{"winter", "night"}},
		{name: "march morning", at: time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC), want: Moment{"spring", "morning"}},
		{name: "may late morning", at: time.Date(2024, 5, 31, 11, 59, 0, 0, time.UTC), want: Moment{"spring", "morning"}},
		{name: "august evening", at: time.Date(2024, 8, 31, 18, 0, 0, 0, time.UTC), want: Moment{"summer", "evening"}},
		{name: "october evening edge", at: time.Date(2024, 10, 31, 20, 59, 0, 0, time.UTC), want: Moment{"autumn", "evening"}},
		{name: "november night", at: time.Date(2024, 11, 30, 21, 0, 0, 0, time.UTC), want: Moment{"autumn", "night"}},
		{name: "february before dawn", at: time.Date(2024, 2, 29, 4, 0, 0, 0, time.UTC), want: Moment{"winter", "night"}},
		{name: "september afternoon edge", at: time.Date(2024, 9, 1, 17, 0, 0, 0, time.UTC), want: Moment{"autumn", "afternoon"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := MomentOf(tt.at); got != tt.want {
				t.Errorf("MomentOf(%v) = %+v, want %+v", tt.at, got, tt.want)
			}
		})
	}
}

func TestPalettes(t *testing.T) {
	for season, palette := range Palettes {
		if len(palette) < 4 || len(palette) > 8 {
			t.Errorf("%s palette has %d tags", season, len(palette))
		}
		if _, ok := seasonAdjectives[season]; !ok {
			t.Errorf("%s has no adjective", season)
		}
	}
	if len(Palettes["summer"]) != 6 {
		t.Errorf("expected 6 summer tags, got %d", len(Palettes["summer"]))
	}
}

func TestSeasonalEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("summer afternoon", func(t *testing.T) {
		sim := &tu.MockSimilarity{TopTracks: map[string][]services.TagTrack{}}
		for _, tag := range Palettes["summer"] {
			sim.TopTracks[tag] = tagTracks(tag, 3)
		}
		cat := &tu.MockCatalog{SearchFunc: uriFor}
		engine := NewSeasonalEngine(testDeps(sim, cat))

		result, err := engine.Generate(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(sim.TagCalls) != 1 || !slices.Contains(Palettes["summer"], sim.TagCalls[0]) {
			t.Fatalf("expected one summer tag, got %v", sim.TagCalls)
		}
		genre := sim.TagCalls[0]
		if sim.Limits[0] != 30 {
			t.Errorf("expected 30 top tracks, got %d", sim.Limits[0])
		}
		if want := genre + " songs on a summery afternoon"; result.PlaylistName != want {
			t.Errorf("expected %q, got %q", want, result.PlaylistName)
		}
		if len(result.Tracks) != 3 || len(result.URIs) != 3 {
			t.Errorf("expected 3 tracks and URIs, got %d and %d", len(result.Tracks), len(result.URIs))
		}
		if !strings.HasPrefix(cat.Searches[0], genre+" song 1 ") {
			t.Errorf("expected free-text query, got %q", cat.Searches[0])
		}
	})

	t.Run("christmas overrides the season", func(t *testing.T) {
		sim := &tu.MockSimilarity{}
		deps := testDeps(sim, &tu.MockCatalog{})
		deps.Now = func() time.Time { return time.Date(2024, 12, 25, 19, 30, 0, 0, time.UTC) }

		result, err := NewSeasonalEngine(deps).Generate(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Contains(Palettes["christmas"], sim.TagCalls[0]) {
			t.Errorf("expected a christmas tag, got %s", sim.TagCalls[0])
		}
		if !strings.HasSuffix(result.PlaylistName, "on a festive evening") {
			t.Errorf("unexpected name %q", result.PlaylistName)
		}
	})

	t.Run("same seed picks the same genre", func(t *testing.T) {
		first := &tu.MockSimilarity{}
		second := &tu.MockSimilarity{}

		if _, err := NewSeasonalEngine(testDeps(first, &tu.MockCatalog{})).Generate(ctx, nil); err != nil {
			t.Fatal(err)
		}
		if _, err := NewSeasonalEngine(testDeps(second, &tu.MockCatalog{})).Generate(ctx, nil); err != nil {
			t.Fatal(err)
		}
		if first.TagCalls[0] != second.TagCalls[0] {
			t.Errorf("expected deterministic pick, got %s and %s", first.TagCalls[0], second.TagCalls[0])
		}
	})

	t.Run("keeps tracks without a URI", func(t *testing.T) {
		sim := &tu.MockSimilarity{TopTracks: map[string][]services.TagTrack{}}
		for _, tag := range Palettes["summer"] {
			sim.TopTracks[tag] = tagTracks(tag, 4)
		}
		engine := NewSeasonalEngine(testDeps(sim, &tu.MockCatalog{}))

		result, err := engine.Generate(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Tracks) != 4 || len(result.URIs) != 0 {
			t.Errorf("expected 4 tracks without URIs, got %d and %d", len(result.Tracks), len(result.URIs))
		}
	})
}
