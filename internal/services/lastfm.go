package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const lastfmBaseURL = "http://ws.audioscrobbler.com/2.0/"

// LastFMService implements [SimilarityClient] against the Last.fm 2.0 API.
type LastFMService struct {
	api     *APIService
	apiKey  string
	limiter *rate.Limiter
	cache   Cache
	ttl     time.Duration
	logger  *log.Logger
}

// LastFMOpts configures a [LastFMService].
type LastFMOpts struct {
	APIKey            string
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64 // zero disables pacing
	Cache             Cache   // optional
	CacheTTL          time.Duration
	Logger            *log.Logger
}

// NewLastFMService creates a Last.fm client.
func NewLastFMService(opts LastFMOpts) *LastFMService {
	if opts.BaseURL == "" {
		opts.BaseURL = lastfmBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &LastFMService{
		api:     NewAPIService(opts.BaseURL, opts.HTTPClient),
		apiKey:  opts.APIKey,
		limiter: limiter,
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		logger:  opts.Logger.With("service", "lastfm"),
	}
}

type nameEntry struct {
	Name string `json:"name"`
}

type similarTagsResponse struct {
	SimilarTags struct {
		Tag []nameEntry `json:"tag"`
	} `json:"similartags"`
}

type similarArtistsResponse struct {
	SimilarArtists struct {
		Artist []nameEntry `json:"artist"`
	} `json:"similarartists"`
}

type topTracksResponse struct {
	Tracks struct {
		Track []struct {
			Name   string    `json:"name"`
			Artist nameEntry `json:"artist"`
		} `json:"track"`
	} `json:"tracks"`
}

// lastfmError is present on failed calls, which Last.fm may still answer with 200.
type lastfmError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

// SimilarTags returns tags similar to tag, most similar first.
func (s *LastFMService) SimilarTags(ctx context.Context, tag string) []string {
	var body similarTagsResponse
	if !s.call(ctx, "tag.getSimilar", url.Values{"tag": {tag}}, &body) {
		return []string{}
	}
	return names(body.SimilarTags.Tag)
}

// SimilarArtists returns artists similar to artist, most similar first.
func (s *LastFMService) SimilarArtists(ctx context.Context, artist string) []string {
	var body similarArtistsResponse
	if !s.call(ctx, "artist.getsimilar", url.Values{"artist": {artist}}, &body) {
		return []string{}
	}
	return names(body.SimilarArtists.Artist)
}

// TopTracksForTag returns up to limit of the most played tracks for tag.
func (s *LastFMService) TopTracksForTag(ctx context.Context, tag string, limit int) []TagTrack {
	var body topTracksResponse
	params := url.Values{"tag": {tag}, "limit": {strconv.Itoa(limit)}}
	if !s.call(ctx, "tag.getTopTracks", params, &body) {
		return []TagTrack{}
	}

	tracks := make([]TagTrack, 0, len(body.Tracks.Track))
	for _, t := range body.Tracks.Track {
		tracks = append(tracks, TagTrack{Name: t.Name, Artist: t.Artist.Name})
	}
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks
}

// call fetches method into out and reports success. Every failure is logged here.
func (s *LastFMService) call(ctx context.Context, method string, params url.Values, out any) bool {
	key := cacheKey(method, params)
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			resp := &APIResponse{StatusCode: http.StatusOK, Body: data}
			if err := resp.Decode(out); err == nil {
				return true
			}
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Warn("request not sent", "method", method, "error", err)
		return false
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("method", method)
	query.Set("api_key", s.apiKey)
	query.Set("format", "json")

	resp, err := s.api.Get(ctx, "", query)
	if err != nil {
		s.logger.Warn("request failed", "method", method, "error", err)
		return false
	}
	if !resp.OK() {
		s.logger.Warn("unexpected status", "method", method, "status", resp.StatusCode)
		return false
	}

	var apiErr lastfmError
	if err := resp.Decode(&apiErr); err == nil && apiErr.Code != 0 {
		s.logger.Warn("api error", "method", method, "code", apiErr.Code, "message", apiErr.Message)
		return false
	}
	if err := resp.Decode(out); err != nil {
		s.logger.Warn("bad response", "method", method, "error", err)
		return false
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, resp.Body, s.ttl)
	}
	return true
}

func cacheKey(method string, params url.Values) string {
	return "lastfm:" + method + "?" + params.Encode()
}

func names(entries []nameEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
