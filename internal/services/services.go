package services

import (
	"context"
)

// SimilarityClient queries the tag/artist similarity graph.
//
// Implementations never fail: upstream errors are logged and yield an empty result.
type SimilarityClient interface {
	SimilarTags(ctx context.Context, tag string) []string
	SimilarArtists(ctx context.Context, artist string) []string
	TopTracksForTag(ctx context.Context, tag string, limit int) []TagTrack
}

// CatalogClient wraps the streaming catalog.
type CatalogClient interface {
	// SearchTrack returns the URI of the first hit for query, or "" when nothing matches.
	SearchTrack(ctx context.Context, query string, limit int) (string, error)

	// TopTracksForArtist resolves name to the first matching artist and returns up to count of its top tracks.
	TopTracksForArtist(ctx context.Context, name string, count int) ([]CatalogTrack, error)

	// UserTopArtists returns the signed-in user's top artist names, best first.
	UserTopArtists(ctx context.Context, timeRange string, limit int) ([]string, error)

	// UserSavedAlbums returns albums from the user's library.
	UserSavedAlbums(ctx context.Context, limit int) ([]Album, error)

	// CreateOrFindPlaylist returns the id of the user's playlist named name (case-insensitive),
	// creating a private playlist when none exists.
	CreateOrFindPlaylist(ctx context.Context, name string) (string, error)

	// AddItems appends uris to a playlist in one call.
	AddItems(ctx context.Context, playlistID string, uris ...string) error

	// CurrentUserName returns the display name of the signed-in user.
	CurrentUserName(ctx context.Context) (string, error)

	// DescribeTracks looks up name and artist for each track URI.
	DescribeTracks(ctx context.Context, uris []string) ([]CatalogTrack, error)
}

// VideoClient wraps the video platform.
type VideoClient interface {
	// SearchVideo returns the first video for query, or nil when there is none.
	SearchVideo(ctx context.Context, query string) (*Video, error)
	CreateOrFindPlaylist(ctx context.Context, name string) (string, error)
	// InsertItem appends one video to a playlist and returns the new item id.
	InsertItem(ctx context.Context, playlistID, videoID string) (string, error)
}

// WeatherClient resolves the caller's city and its current weather.
type WeatherClient interface {
	CurrentCity(ctx context.Context) (string, error)
	CurrentWeather(ctx context.Context, city string) (*Weather, error)
}

// TagTrack is a track listed under a tag by the similarity service.
type TagTrack struct {
	Name   string
	Artist string
}

// CatalogTrack is a track record from the streaming catalog.
type CatalogTrack struct {
	ID     string
	URI    string
	Name   string
	Artist string
}

// Album is a saved album from the user's library.
type Album struct {
	ID       string
	Name     string
	Artists  []string
	ImageURL string
}

// Video is a video platform search hit.
type Video struct {
	ID    string
	Title string
}

// Weather is the current condition for a city.
type Weather struct {
	City        string
	Condition   string // primary condition, e.g. "Rain"
	Description string // detailed description, e.g. "light rain"
}
