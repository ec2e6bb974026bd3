package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/xrash/smetrics"
)

const (
	PlatformSpotify = "spotify"
	PlatformYouTube = "youtube"
	PlatformBoth    = "both"
)

// Platforms lists the accepted publish targets.
var Platforms = []string{PlatformSpotify, PlatformYouTube, PlatformBoth}

// Request describes one playlist to publish.
type Request struct {
	Name     string
	URIs     []string // catalog track URIs, in playlist order
	Platform string
}

// ItemResult is the outcome of inserting one video.
type ItemResult struct {
	Query   string
	VideoID string
	Title   string
	ItemID  string
	Error   error
}

// PlatformResult reports what happened on a single platform.
type PlatformResult struct {
	Platform   string
	PlaylistID string
	Added      int
	Skipped    []string     // queries with no acceptable video
	Items      []ItemResult // YouTube only
	Error      error
}

// Result collects per-platform outcomes for a [Request].
type Result struct {
	Name      string
	Platforms []PlatformResult
}

// Err joins the platform failures, or returns nil when every platform succeeded.
func (r *Result) Err() error {
	var errs []error
	for _, p := range r.Platforms {
		if p.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Platform, p.Error))
		}
	}
	return errors.Join(errs...)
}

// Publisher writes recommendation batches to playlists.
type Publisher struct {
	catalog       services.CatalogClient
	video         services.VideoClient
	minSimilarity float64
	logger        *log.Logger
}

// Opts configures a [Publisher]. Video may be nil when YouTube is not configured.
type Opts struct {
	Catalog            services.CatalogClient
	Video              services.VideoClient
	MinVideoSimilarity float64 // Jaro-Winkler floor for video titles; 0 disables
	Logger             *log.Logger
}

// New creates a Publisher.
func New(opts Opts) *Publisher {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Publisher{
		catalog:       opts.Catalog,
		video:         opts.Video,
		minSimilarity: opts.MinVideoSimilarity,
		logger:        opts.Logger.With("component", "publish"),
	}
}

// ValidPlatform reports whether name is an accepted publish target.
func ValidPlatform(name string) bool {
	switch name {
	case PlatformSpotify, PlatformYouTube, PlatformBoth:
		return true
	}
	return false
}

// Publish creates or reuses a playlist named req.Name on the requested platforms.
//
// For [PlatformBoth] Spotify runs first and a failure on one platform does not stop the
// other. The returned error is [Result.Err]; the result is always non-nil once the
// request itself has been validated.
func (p *Publisher) Publish(ctx context.Context, req Request, progress chan<- ProgressUpdate) (*Result, error) {
	if !ValidPlatform(req.Platform) {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownPlatform, req.Platform)
	}
	if len(req.URIs) == 0 {
		return nil, shared.ErrEmptyTrackList
	}

	result := &Result{Name: req.Name}

	if req.Platform == PlatformSpotify || req.Platform == PlatformBoth {
		pr, err := p.PublishSpotify(ctx, req.Name, req.URIs, progress)
		if err != nil {
			p.logger.Error("spotify publish failed", "playlist", req.Name, "error", err)
		}
		result.Platforms = append(result.Platforms, *pr)
	}

	if req.Platform == PlatformYouTube || req.Platform == PlatformBoth {
		pr, err := p.PublishYouTube(ctx, req.Name, req.URIs, progress)
		if err != nil {
			p.logger.Error("youtube publish failed", "playlist", req.Name, "error", err)
		}
		result.Platforms = append(result.Platforms, *pr)
	}

	return result, result.Err()
}

// PublishSpotify finds or creates the playlist and adds every URI in one batch.
func (p *Publisher) PublishSpotify(ctx context.Context, name string, uris []string, progress chan<- ProgressUpdate) (*PlatformResult, error) {
	pr := &PlatformResult{Platform: PlatformSpotify}
	fail := func(err error) (*PlatformResult, error) {
		pr.Error = err
		return pr, err
	}

	if len(uris) == 0 {
		return fail(shared.ErrEmptyTrackList)
	}
	if p.catalog == nil {
		return fail(fmt.Errorf("%w: spotify", shared.ErrServiceUnavailable))
	}

	sendProgress(progress, createUpdate(PlatformSpotify, name))
	id, err := p.catalog.CreateOrFindPlaylist(ctx, name)
	if err != nil {
		return fail(fmt.Errorf("failed to create playlist: %w", err))
	}
	pr.PlaylistID = id

	sendProgress(progress, addUpdate(PlatformSpotify, len(uris)))
	if err := p.catalog.AddItems(ctx, id, uris...); err != nil {
		return fail(fmt.Errorf("failed to add tracks: %w", err))
	}
	pr.Added = len(uris)

	p.logger.Info("published playlist", "platform", PlatformSpotify, "playlist", name, "id", id, "tracks", pr.Added)
	sendProgress(progress, doneUpdate(pr))
	return pr, nil
}

type candidate struct {
	query string
	video services.Video
}

// PublishYouTube resolves each catalog URI to a video and inserts the matches one by one.
//
// Tracks without an acceptable video are skipped. Insert failures are recorded per item
// and do not abort the remaining inserts.
func (p *Publisher) PublishYouTube(ctx context.Context, name string, uris []string, progress chan<- ProgressUpdate) (*PlatformResult, error) {
	pr := &PlatformResult{Platform: PlatformYouTube}
	fail := func(err error) (*PlatformResult, error) {
		pr.Error = err
		return pr, err
	}

	if len(uris) == 0 {
		return fail(shared.ErrEmptyTrackList)
	}
	if p.video == nil || p.catalog == nil {
		return fail(fmt.Errorf("%w: youtube", shared.ErrServiceUnavailable))
	}

	sendProgress(progress, describeUpdate(len(uris)))
	tracks, err := p.catalog.DescribeTracks(ctx, uris)
	if err != nil {
		return fail(fmt.Errorf("failed to look up tracks: %w", err))
	}

	selected := p.selectVideos(ctx, tracks, pr, progress)
	if len(selected) == 0 {
		return fail(shared.ErrNoVideosSelected)
	}

	sendProgress(progress, createUpdate(PlatformYouTube, name))
	id, err := p.video.CreateOrFindPlaylist(ctx, name)
	if err != nil {
		return fail(fmt.Errorf("failed to create playlist: %w", err))
	}
	pr.PlaylistID = id

	for i, c := range selected {
		sendProgress(progress, insertUpdate(i+1, len(selected), c.video.Title))

		item := ItemResult{Query: c.query, VideoID: c.video.ID, Title: c.video.Title}
		item.ItemID, item.Error = p.video.InsertItem(ctx, id, c.video.ID)
		if item.Error != nil {
			p.logger.Warn("failed to insert video", "video", c.video.ID, "error", item.Error)
		} else {
			pr.Added++
		}
		pr.Items = append(pr.Items, item)
	}

	p.logger.Info("published playlist", "platform", PlatformYouTube, "playlist", name, "id", id, "videos", pr.Added, "skipped", len(pr.Skipped))
	sendProgress(progress, doneUpdate(pr))
	return pr, nil
}

func (p *Publisher) selectVideos(ctx context.Context, tracks []services.CatalogTrack, pr *PlatformResult, progress chan<- ProgressUpdate) []candidate {
	seen := mapset.NewThreadUnsafeSet[string]()
	var selected []candidate

	for i, t := range tracks {
		query := t.Name + " " + t.Artist
		sendProgress(progress, searchUpdate(i+1, len(tracks), query))

		video, err := p.video.SearchVideo(ctx, query)
		if err != nil {
			p.logger.Warn("video search failed", "query", query, "error", err)
			pr.Skipped = append(pr.Skipped, query)
			continue
		}
		if video == nil {
			p.logger.Debug("no video found", "query", query)
			pr.Skipped = append(pr.Skipped, query)
			continue
		}
		if score := TitleSimilarity(query, video.Title); p.minSimilarity > 0 && score < p.minSimilarity {
			p.logger.Debug("video title below similarity floor", "query", query, "title", video.Title, "score", score)
			pr.Skipped = append(pr.Skipped, query)
			continue
		}
		if !seen.Add(video.ID) {
			continue
		}
		selected = append(selected, candidate{query: query, video: *video})
	}
	return selected
}

// TitleSimilarity scores a video title against a "name artist" query in [0, 1].
func TitleSimilarity(query, title string) float64 {
	return smetrics.JaroWinkler(strings.ToLower(query), strings.ToLower(title), 0.7, 4)
}
