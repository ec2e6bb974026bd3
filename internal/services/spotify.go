package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/credentials"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const (
	defaultMarket       = "GB"
	spotifyTrackURIHead = "spotify:track:"
	maxTracksPerLookup  = 50
	maxTracksPerAdd     = 100
)

// SpotifyService implements [CatalogClient] with the Spotify Web API.
//
// One session is shared by every engine in a process. Mutating calls refresh the
// credential first; reads rely on the transport's token source.
type SpotifyService struct {
	client      *spotify.Client
	store       credentials.Store
	market      string
	description string
	logger      *log.Logger
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	Store       credentials.Store
	BaseURL     string       // override for tests, must end in "/"
	HTTPClient  *http.Client // defaults to an oauth2 client over Store
	Market      string
	Description string
	Logger      *log.Logger
}

// NewSpotifyService creates a catalog client.
func NewSpotifyService(ctx context.Context, opts SpotifyOpts) *SpotifyService {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Market == "" {
		opts.Market = defaultMarket
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = oauth2.NewClient(ctx, credentials.TokenSource(ctx, opts.Store))
	}

	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}

	return &SpotifyService{
		client:      spotify.New(hc, clientOpts...),
		store:       opts.Store,
		market:      opts.Market,
		description: opts.Description,
		logger:      opts.Logger.With("service", "spotify"),
	}
}

// ensureFresh refreshes the stored credential when it has expired.
func (s *SpotifyService) ensureFresh(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("%w: spotify", shared.ErrNotAuthenticated)
	}
	if _, err := credentials.Fresh(ctx, s.store); err != nil {
		return fmt.Errorf("%w: spotify: %v", shared.ErrAuthFailed, err)
	}
	return nil
}

func (s *SpotifyService) SearchTrack(ctx context.Context, query string, limit int) (string, error) {
	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return "", fmt.Errorf("%w: search %q: %v", shared.ErrAPIRequest, query, err)
	}
	if res.Tracks == nil || len(res.Tracks.Tracks) == 0 {
		return "", nil
	}
	return string(res.Tracks.Tracks[0].URI), nil
}

func (s *SpotifyService) TopTracksForArtist(ctx context.Context, name string, count int) ([]CatalogTrack, error) {
	res, err := s.client.Search(ctx, name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("%w: artist search %q: %v", shared.ErrAPIRequest, name, err)
	}
	if res.Artists == nil || len(res.Artists.Artists) == 0 {
		s.logger.Debug("no artist found", "artist", name)
		return []CatalogTrack{}, nil
	}

	top, err := s.client.GetArtistsTopTracks(ctx, res.Artists.Artists[0].ID, s.market)
	if err != nil {
		return nil, fmt.Errorf("%w: top tracks for %q: %v", shared.ErrAPIRequest, name, err)
	}

	tracks := make([]CatalogTrack, 0, len(top))
	for _, t := range top {
		if count > 0 && len(tracks) == count {
			break
		}
		tracks = append(tracks, catalogTrack(&t))
	}
	return tracks, nil
}

func (s *SpotifyService) UserTopArtists(ctx context.Context, timeRange string, limit int) ([]string, error) {
	page, err := s.client.CurrentUsersTopArtists(ctx, spotify.Timerange(spotify.Range(timeRange)), spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: top artists: %v", shared.ErrAPIRequest, err)
	}

	names := make([]string, 0, len(page.Artists))
	for _, a := range page.Artists {
		names = append(names, a.Name)
	}
	return names, nil
}

func (s *SpotifyService) UserSavedAlbums(ctx context.Context, limit int) ([]Album, error) {
	page, err := s.client.CurrentUsersAlbums(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: saved albums: %v", shared.ErrAPIRequest, err)
	}

	albums := make([]Album, 0, len(page.Albums))
	for _, a := range page.Albums {
		album := Album{ID: string(a.ID), Name: a.Name}
		for _, artist := range a.Artists {
			album.Artists = append(album.Artists, artist.Name)
		}
		if len(a.Images) > 0 {
			album.ImageURL = a.Images[0].URL
		}
		albums = append(albums, album)
	}
	return albums, nil
}

func (s *SpotifyService) CurrentUserName(ctx context.Context) (string, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: current user: %v", shared.ErrAPIRequest, err)
	}
	if user.DisplayName != "" {
		return user.DisplayName, nil
	}
	return user.ID, nil
}

func (s *SpotifyService) CreateOrFindPlaylist(ctx context.Context, name string) (string, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return "", err
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: current user: %v", shared.ErrAPIRequest, err)
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return "", fmt.Errorf("%w: list playlists: %v", shared.ErrAPIRequest, err)
	}
	for {
		for _, p := range page.Playlists {
			if strings.EqualFold(p.Name, name) {
				s.logger.Debug("found existing playlist", "name", p.Name, "id", p.ID)
				return string(p.ID), nil
			}
		}
		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: list playlists: %v", shared.ErrAPIRequest, err)
		}
	}

	created, err := s.client.CreatePlaylistForUser(ctx, user.ID, name, s.description, false, false)
	if err != nil {
		return "", fmt.Errorf("%w: create playlist %q: %v", shared.ErrAPIRequest, name, err)
	}
	s.logger.Info("created playlist", "name", name, "id", created.ID)
	return string(created.ID), nil
}

func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, uris ...string) error {
	if len(uris) == 0 {
		return shared.ErrEmptyTrackList
	}
	if err := s.ensureFresh(ctx); err != nil {
		return err
	}

	// The Web API accepts at most 100 items per request.
	for start := 0; start < len(uris); start += maxTracksPerAdd {
		end := min(start+maxTracksPerAdd, len(uris))

		ids := make([]spotify.ID, 0, end-start)
		for _, uri := range uris[start:end] {
			ids = append(ids, TrackID(uri))
		}

		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
			return fmt.Errorf("%w: add items %d-%d to %s: %v", shared.ErrAPIRequest, start+1, end, playlistID, err)
		}
	}
	return nil
}

func (s *SpotifyService) DescribeTracks(ctx context.Context, uris []string) ([]CatalogTrack, error) {
	tracks := make([]CatalogTrack, 0, len(uris))
	for start := 0; start < len(uris); start += maxTracksPerLookup {
		end := min(start+maxTracksPerLookup, len(uris))

		ids := make([]spotify.ID, 0, end-start)
		for _, uri := range uris[start:end] {
			ids = append(ids, TrackID(uri))
		}

		found, err := s.client.GetTracks(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: track lookup: %v", shared.ErrAPIRequest, err)
		}
		for _, t := range found {
			if t != nil {
				tracks = append(tracks, catalogTrack(t))
			}
		}
	}
	return tracks, nil
}

// TrackID extracts the bare id from a "spotify:track:<id>" URI.
func TrackID(uri string) spotify.ID {
	return spotify.ID(strings.TrimPrefix(uri, spotifyTrackURIHead))
}

func catalogTrack(t *spotify.FullTrack) CatalogTrack {
	track := CatalogTrack{ID: string(t.ID), URI: string(t.URI), Name: t.Name}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}
