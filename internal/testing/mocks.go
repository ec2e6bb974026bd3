package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/songrec/internal/services"
)

// MockSimilarity is a test double for [services.SimilarityClient].
type MockSimilarity struct {
	Tags      map[string][]string
	Artists   map[string][]string
	TopTracks map[string][]services.TagTrack

	mu       sync.Mutex
	TagCalls []string // tags passed to TopTracksForTag, in order
	Limits   []int
}

func (m *MockSimilarity) SimilarTags(_ context.Context, tag string) []string {
	if v, ok := m.Tags[tag]; ok {
		return v
	}
	return []string{}
}

func (m *MockSimilarity) SimilarArtists(_ context.Context, artist string) []string {
	if v, ok := m.Artists[artist]; ok {
		return v
	}
	return []string{}
}

func (m *MockSimilarity) TopTracksForTag(_ context.Context, tag string, limit int) []services.TagTrack {
	m.mu.Lock()
	m.TagCalls = append(m.TagCalls, tag)
	m.Limits = append(m.Limits, limit)
	m.mu.Unlock()

	tracks := m.TopTracks[tag]
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks
}

// MockCatalog is a test double for [services.CatalogClient].
//
// SearchTrack answers from URIs when the query is present, otherwise from
// SearchFunc, otherwise with no hit.
type MockCatalog struct {
	URIs         map[string]string
	SearchFunc   func(query string) string
	ArtistTracks map[string][]services.CatalogTrack
	TopArtists   []string
	Albums       []services.Album
	UserName     string
	Tracks       map[string]services.CatalogTrack // keyed by URI

	SearchErr   error
	TopErr      error
	AlbumsErr   error
	CreateErr   error
	AddErr      error
	DescribeErr error

	mu          sync.Mutex
	Searches    []string
	ArtistCalls []string
	TimeRange   string
	Playlists   map[string]string // lower-cased name to id
	Added       map[string][]string
	Creates     int
}

func (m *MockCatalog) SearchTrack(_ context.Context, query string, _ int) (string, error) {
	m.mu.Lock()
	m.Searches = append(m.Searches, query)
	m.mu.Unlock()

	if m.SearchErr != nil {
		return "", m.SearchErr
	}
	if uri, ok := m.URIs[query]; ok {
		return uri, nil
	}
	if m.SearchFunc != nil {
		return m.SearchFunc(query), nil
	}
	return "", nil
}

func (m *MockCatalog) TopTracksForArtist(_ context.Context, name string, count int) ([]services.CatalogTrack, error) {
	m.mu.Lock()
	m.ArtistCalls = append(m.ArtistCalls, name)
	m.mu.Unlock()

	tracks := m.ArtistTracks[name]
	if count > 0 && len(tracks) > count {
		tracks = tracks[:count]
	}
	return tracks, nil
}

func (m *MockCatalog) UserTopArtists(_ context.Context, timeRange string, limit int) ([]string, error) {
	m.TimeRange = timeRange
	if m.TopErr != nil {
		return nil, m.TopErr
	}
	if limit > 0 && len(m.TopArtists) > limit {
		return m.TopArtists[:limit], nil
	}
	return m.TopArtists, nil
}

func (m *MockCatalog) UserSavedAlbums(_ context.Context, limit int) ([]services.Album, error) {
	if m.AlbumsErr != nil {
		return nil, m.AlbumsErr
	}
	if limit > 0 && len(m.Albums) > limit {
		return m.Albums[:limit], nil
	}
	return m.Albums, nil
}

func (m *MockCatalog) CreateOrFindPlaylist(_ context.Context, name string) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Playlists == nil {
		m.Playlists = map[string]string{}
	}
	key := strings.ToLower(name)
	if id, ok := m.Playlists[key]; ok {
		return id, nil
	}
	m.Creates++
	id := fmt.Sprintf("playlist-%d", m.Creates)
	m.Playlists[key] = id
	return id, nil
}

func (m *MockCatalog) AddItems(_ context.Context, playlistID string, uris ...string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append(m.Added[playlistID], uris...)
	return nil
}

func (m *MockCatalog) CurrentUserName(context.Context) (string, error) {
	if m.UserName == "" {
		return "", fmt.Errorf("no user")
	}
	return m.UserName, nil
}

func (m *MockCatalog) DescribeTracks(_ context.Context, uris []string) ([]services.CatalogTrack, error) {
	if m.DescribeErr != nil {
		return nil, m.DescribeErr
	}
	out := make([]services.CatalogTrack, 0, len(uris))
	for _, uri := range uris {
		if t, ok := m.Tracks[uri]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// MockVideo is a test double for [services.VideoClient].
type MockVideo struct {
	Videos     map[string]*services.Video // keyed by query
	InsertErrs map[string]error           // keyed by video id
	CreateErr  error
	Channel    string
	ChannelErr error

	mu        sync.Mutex
	Queries   []string
	Playlists map[string]string
	Items     map[string][]string
	Creates   int
}

func (m *MockVideo) SearchVideo(_ context.Context, query string) (*services.Video, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	return m.Videos[query], nil
}

func (m *MockVideo) CreateOrFindPlaylist(_ context.Context, name string) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Playlists == nil {
		m.Playlists = map[string]string{}
	}
	key := strings.ToLower(name)
	if id, ok := m.Playlists[key]; ok {
		return id, nil
	}
	m.Creates++
	id := fmt.Sprintf("yt-playlist-%d", m.Creates)
	m.Playlists[key] = id
	return id, nil
}

func (m *MockVideo) InsertItem(_ context.Context, playlistID, videoID string) (string, error) {
	if err := m.InsertErrs[videoID]; err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Items == nil {
		m.Items = map[string][]string{}
	}
	m.Items[playlistID] = append(m.Items[playlistID], videoID)
	return "item-" + videoID, nil
}

func (m *MockVideo) ChannelTitle(context.Context) (string, error) {
	return m.Channel, m.ChannelErr
}

// MockWeather is a test double for [services.WeatherClient].
type MockWeather struct {
	City       string
	Weather    *services.Weather
	CityErr    error
	WeatherErr error
}

func (m *MockWeather) CurrentCity(context.Context) (string, error) {
	if m.CityErr != nil {
		return "", m.CityErr
	}
	return m.City, nil
}

func (m *MockWeather) CurrentWeather(_ context.Context, city string) (*services.Weather, error) {
	if m.WeatherErr != nil {
		return nil, m.WeatherErr
	}
	return m.Weather, nil
}
