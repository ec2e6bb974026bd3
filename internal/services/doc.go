// Package services holds the HTTP clients the recommendation engines and the
// publisher depend on.
//
// # Similarity
//
// [LastFMService] implements [SimilarityClient]. Every call goes through a shared
// [rate.Limiter] and an optional [Cache]; upstream failures are logged and yield an
// empty result, so the engines never see an error from it.
//
// # Catalog
//
// [SpotifyService] implements [CatalogClient] on top of github.com/zmb3/spotify/v2.
// Mutating calls run the credential through [credentials.Fresh] first.
//
// # Video
//
// [YouTubeService] implements [VideoClient] with the YouTube Data API v3.
// New playlists are private.
//
// # Location and Weather
//
// [WeatherService] chains api.ipify.org, ip-api.com and OpenWeather.
//
// # Error Handling
//
// Catalog, video and weather calls wrap sentinels from the shared package:
//   - [shared.ErrAPIRequest] : upstream request failed
//   - [shared.ErrAuthFailed] : the stored credential could not be refreshed
//   - [shared.ErrLocationLookup] : a step of the weather chain failed
package services
