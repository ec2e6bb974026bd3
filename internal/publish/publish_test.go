package publish

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
	tu "github.com/desertthunder/songrec/internal/testing"
)

var testURIs = []string{"spotify:track:1", "spotify:track:2", "spotify:track:3"}

func testCatalog() *tu.MockCatalog {
	return &tu.MockCatalog{Tracks: map[string]services.CatalogTrack{
		"spotify:track:1": {ID: "1", URI: "spotify:track:1", Name: "Teardrop", Artist: "Massive Attack"},
		"spotify:track:2": {ID: "2", URI: "spotify:track:2", Name: "Glory Box", Artist: "Portishead"},
		"spotify:track:3": {ID: "3", URI: "spotify:track:3", Name: "Roads", Artist: "Portishead"},
	}}
}

func testVideo() *tu.MockVideo {
	return &tu.MockVideo{Videos: map[string]*services.Video{
		"Teardrop Massive Attack": {ID: "v1", Title: "Massive Attack - Teardrop"},
		"Glory Box Portishead":    {ID: "v2", Title: "Portishead - Glory Box"},
		"Roads Portishead":        {ID: "v3", Title: "Portishead - Roads"},
	}}
}

func newTestPublisher(cat *tu.MockCatalog, video *tu.MockVideo, floor float64) *Publisher {
	opts := Opts{Catalog: cat, MinVideoSimilarity: floor, Logger: shared.NewLogger(io.Discard)}
	if video != nil {
		opts.Video = video
	}
	return New(opts)
}

func TestPublishValidation(t *testing.T) {
	p := newTestPublisher(testCatalog(), testVideo(), 0)
	ctx := context.Background()

	t.Run("empty track list", func(t *testing.T) {
		for _, platform := range Platforms {
			if _, err := p.Publish(ctx, Request{Name: "x", Platform: platform}, nil); !errors.Is(err, shared.ErrEmptyTrackList) {
				t.Errorf("%s: expected ErrEmptyTrackList, got %v", platform, err)
			}
		}
	})

	t.Run("unknown platform", func(t *testing.T) {
		if _, err := p.Publish(ctx, Request{Name: "x", URIs: testURIs, Platform: "tidal"}, nil); !errors.Is(err, shared.ErrUnknownPlatform) {
			t.Errorf("expected ErrUnknownPlatform, got %v", err)
		}
	})

	t.Run("valid platforms", func(t *testing.T) {
		for _, platform := range Platforms {
			if !ValidPlatform(platform) {
				t.Errorf("expected %s to be valid", platform)
			}
		}
		if ValidPlatform("") {
			t.Error("expected empty platform to be invalid")
		}
	})
}

func TestPublishSpotify(t *testing.T) {
	ctx := context.Background()

	t.Run("one batch", func(t *testing.T) {
		cat := testCatalog()
		p := newTestPublisher(cat, nil, 0)

		result, err := p.Publish(ctx, Request{Name: "jazz songs", URIs: testURIs, Platform: PlatformSpotify}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Platforms) != 1 {
			t.Fatalf("expected one platform result, got %d", len(result.Platforms))
		}
		pr := result.Platforms[0]
		if pr.PlaylistID != "playlist-1" || pr.Added != 3 {
			t.Errorf("unexpected result %+v", pr)
		}
		if !slices.Equal(cat.Added["playlist-1"], testURIs) {
			t.Errorf("expected URIs in order, got %v", cat.Added["playlist-1"])
		}
	})

	t.Run("publishing twice reuses the playlist", func(t *testing.T) {
		cat := testCatalog()
		p := newTestPublisher(cat, nil, 0)

		for range 2 {
			if _, err := p.PublishSpotify(ctx, "Jazz Songs", testURIs, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if cat.Creates != 1 {
			t.Errorf("expected one playlist to be created, got %d", cat.Creates)
		}
		if len(cat.Added["playlist-1"]) != 6 {
			t.Errorf("expected both batches in the same playlist, got %d", len(cat.Added["playlist-1"]))
		}
	})

	t.Run("create failure", func(t *testing.T) {
		cat := testCatalog()
		cat.CreateErr = shared.ErrAuthFailed
		p := newTestPublisher(cat, nil, 0)

		pr, err := p.PublishSpotify(ctx, "x", testURIs, nil)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if pr.Error == nil || pr.Added != 0 {
			t.Errorf("expected failure recorded on the result, got %+v", pr)
		}
	})

	t.Run("add failure", func(t *testing.T) {
		cat := testCatalog()
		cat.AddErr = shared.ErrAPIRequest
		p := newTestPublisher(cat, nil, 0)

		if _, err := p.PublishSpotify(ctx, "x", testURIs, nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestPublishYouTube(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves and inserts each track", func(t *testing.T) {
		video := testVideo()
		p := newTestPublisher(testCatalog(), video, 0)
		progress := make(chan ProgressUpdate, 32)

		pr, err := p.PublishYouTube(ctx, "trip hop", testURIs, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"Teardrop Massive Attack", "Glory Box Portishead", "Roads Portishead"}
		if !slices.Equal(video.Queries, want) {
			t.Errorf("expected queries %v, got %v", want, video.Queries)
		}
		if !slices.Equal(video.Items["yt-playlist-1"], []string{"v1", "v2", "v3"}) {
			t.Errorf("unexpected inserts %v", video.Items)
		}
		if pr.Added != 3 || len(pr.Items) != 3 || pr.Items[0].ItemID != "item-v1" {
			t.Errorf("unexpected result %+v", pr)
		}

		updates := tu.Drain(progress)
		if last := updates[len(updates)-1]; last.Phase != Done || last.Platform != PlatformYouTube {
			t.Errorf("expected a final done update, got %+v", last)
		}
	})

	t.Run("skips tracks without a video", func(t *testing.T) {
		video := testVideo()
		delete(video.Videos, "Glory Box Portishead")
		p := newTestPublisher(testCatalog(), video, 0)

		pr, err := p.PublishYouTube(ctx, "trip hop", testURIs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pr.Added != 2 || !slices.Equal(pr.Skipped, []string{"Glory Box Portishead"}) {
			t.Errorf("unexpected result %+v", pr)
		}
	})

	t.Run("no videos selected", func(t *testing.T) {
		video := &tu.MockVideo{}
		p := newTestPublisher(testCatalog(), video, 0)

		if _, err := p.PublishYouTube(ctx, "trip hop", testURIs, nil); !errors.Is(err, shared.ErrNoVideosSelected) {
			t.Errorf("expected ErrNoVideosSelected, got %v", err)
		}
		if video.Creates != 0 {
			t.Error("expected no playlist to be created")
		}
	})

	t.Run("similarity floor", func(t *testing.T) {
		video := testVideo()
		video.Videos["Roads Portishead"] = &services.Video{ID: "v9", Title: "Lofi Hip Hop Radio 24/7"}
		p := newTestPublisher(testCatalog(), video, 0.58)

		pr, err := p.PublishYouTube(ctx, "trip hop", testURIs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slices.Contains(video.Items["yt-playlist-1"], "v9") {
			t.Error("expected the unrelated video to be skipped")
		}
		if !slices.Equal(pr.Skipped, []string{"Roads Portishead"}) {
			t.Errorf("expected Roads to be skipped, got %v", pr.Skipped)
		}
	})

	t.Run("insert failures are collected", func(t *testing.T) {
		video := testVideo()
		video.InsertErrs = map[string]error{"v2": shared.ErrAPIRequest}
		p := newTestPublisher(testCatalog(), video, 0)

		pr, err := p.PublishYouTube(ctx, "trip hop", testURIs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pr.Added != 2 || len(pr.Items) != 3 {
			t.Fatalf("expected 2 of 3 inserted, got %+v", pr)
		}
		if !errors.Is(pr.Items[1].Error, shared.ErrAPIRequest) {
			t.Errorf("expected the second item to fail, got %v", pr.Items[1].Error)
		}
		if pr.Items[2].ItemID != "item-v3" {
			t.Error("expected inserts to continue after a failure")
		}
	})

	t.Run("duplicate videos inserted once", func(t *testing.T) {
		video := testVideo()
		video.Videos["Roads Portishead"] = video.Videos["Glory Box Portishead"]
		p := newTestPublisher(testCatalog(), video, 0)

		pr, err := p.PublishYouTube(ctx, "trip hop", testURIs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pr.Added != 2 {
			t.Errorf("expected 2 distinct videos, got %d", pr.Added)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		p := newTestPublisher(testCatalog(), nil, 0)

		if _, err := p.PublishYouTube(ctx, "x", testURIs, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestPublishBoth(t *testing.T) {
	ctx := context.Background()

	t.Run("spotify then youtube", func(t *testing.T) {
		cat := testCatalog()
		video := testVideo()
		p := newTestPublisher(cat, video, 0)

		result, err := p.Publish(ctx, Request{Name: "mix", URIs: testURIs, Platform: PlatformBoth}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Platforms) != 2 || result.Platforms[0].Platform != PlatformSpotify || result.Platforms[1].Platform != PlatformYouTube {
			t.Fatalf("unexpected platform order %+v", result.Platforms)
		}
	})

	t.Run("spotify failure does not stop youtube", func(t *testing.T) {
		cat := testCatalog()
		cat.CreateErr = shared.ErrAuthFailed
		video := testVideo()
		p := newTestPublisher(cat, video, 0)

		result, err := p.Publish(ctx, Request{Name: "mix", URIs: testURIs, Platform: PlatformBoth}, nil)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected the spotify error, got %v", err)
		}
		if result.Platforms[1].Added != 3 {
			t.Errorf("expected youtube to publish 3 videos, got %+v", result.Platforms[1])
		}
	})

	t.Run("youtube failure keeps spotify result", func(t *testing.T) {
		cat := testCatalog()
		p := newTestPublisher(cat, &tu.MockVideo{}, 0)

		result, err := p.Publish(ctx, Request{Name: "mix", URIs: testURIs, Platform: PlatformBoth}, nil)
		if !errors.Is(err, shared.ErrNoVideosSelected) {
			t.Errorf("expected ErrNoVideosSelected, got %v", err)
		}
		if result.Platforms[0].Added != 3 || result.Platforms[0].Error != nil {
			t.Errorf("expected spotify to succeed, got %+v", result.Platforms[0])
		}
	})
}

func TestTitleSimilarity(t *testing.T) {
	near := TitleSimilarity("Teardrop Massive Attack", "Massive Attack - Teardrop (Official Video)")
	far := TitleSimilarity("Teardrop Massive Attack", "10 hours of rain sounds")
	if near <= far {
		t.Errorf("expected related title to score higher: %.2f vs %.2f", near, far)
	}
	if exact := TitleSimilarity("Roads", "roads"); exact != 1 {
		t.Errorf("expected case-insensitive exact match to score 1, got %.2f", exact)
	}
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{
		CreatePlaylist: "create_playlist",
		AddTracks:      "add_tracks",
		DescribeTracks: "describe_tracks",
		SearchVideos:   "search_videos",
		InsertVideos:   "insert_videos",
		Done:           "done",
		Phase(42):      "",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
