package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/credentials"
	"github.com/desertthunder/songrec/internal/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	videoKind      = "youtube#video"
	privateStatus  = "private"
	playlistsPage  = 50
	searchPageSize = 1
)

// YouTubeService implements [VideoClient] with the YouTube Data API v3.
type YouTubeService struct {
	svc         *youtube.Service
	store       credentials.Store
	description string
	logger      *log.Logger
}

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	Store       credentials.Store
	Endpoint    string // override for tests
	HTTPClient  *http.Client
	Description string
	Logger      *log.Logger
}

// NewYouTubeService creates a video client.
func NewYouTubeService(ctx context.Context, opts YouTubeOpts) (*YouTubeService, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = oauth2.NewClient(ctx, credentials.TokenSource(ctx, opts.Store))
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(hc)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: youtube client: %v", shared.ErrServiceUnavailable, err)
	}

	return &YouTubeService{
		svc:         svc,
		store:       opts.Store,
		description: opts.Description,
		logger:      opts.Logger.With("service", "youtube"),
	}, nil
}

func (s *YouTubeService) ensureFresh(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("%w: youtube", shared.ErrNotAuthenticated)
	}
	if _, err := credentials.Fresh(ctx, s.store); err != nil {
		return fmt.Errorf("%w: youtube: %v", shared.ErrAuthFailed, err)
	}
	return nil
}

// SearchVideo returns the top video result for query, or nil.
func (s *YouTubeService) SearchVideo(ctx context.Context, query string) (*Video, error) {
	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(searchPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: video search %q: %v", shared.ErrAPIRequest, query, err)
	}

	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		video := &Video{ID: item.Id.VideoId}
		if item.Snippet != nil {
			video.Title = item.Snippet.Title
		}
		return video, nil
	}
	return nil, nil
}

// CreateOrFindPlaylist returns the id of the channel's playlist titled name,
// creating a private one when none matches.
func (s *YouTubeService) CreateOrFindPlaylist(ctx context.Context, name string) (string, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return "", err
	}

	token := ""
	for {
		call := s.svc.Playlists.List([]string{"snippet"}).Mine(true).MaxResults(playlistsPage).Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		resp, err := call.Do()
		if err != nil {
			return "", fmt.Errorf("%w: list playlists: %v", shared.ErrAPIRequest, err)
		}

		for _, p := range resp.Items {
			if p.Snippet != nil && strings.EqualFold(p.Snippet.Title, name) {
				s.logger.Debug("found existing playlist", "name", p.Snippet.Title, "id", p.Id)
				return p.Id, nil
			}
		}

		if resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
	}

	playlist := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{Title: name, Description: s.description},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: privateStatus},
	}
	created, err := s.svc.Playlists.Insert([]string{"snippet", "status"}, playlist).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: create playlist %q: %v", shared.ErrAPIRequest, name, err)
	}
	s.logger.Info("created playlist", "name", name, "id", created.Id)
	return created.Id, nil
}

// InsertItem appends videoID to playlistID.
func (s *YouTubeService) InsertItem(ctx context.Context, playlistID, videoID string) (string, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return "", err
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{Kind: videoKind, VideoId: videoID},
		},
	}
	created, err := s.svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: insert %s: %v", shared.ErrAPIRequest, videoID, err)
	}
	return created.Id, nil
}

// ChannelTitle returns the title of the signed-in channel.
func (s *YouTubeService) ChannelTitle(ctx context.Context) (string, error) {
	resp, err := s.svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: channel lookup: %v", shared.ErrAPIRequest, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", fmt.Errorf("%w: no channel for the signed-in account", shared.ErrAPIRequest)
	}
	return resp.Items[0].Snippet.Title, nil
}
