// Package recommend builds track lists from the similarity graph and the streaming catalog.
//
// # Engines
//
// Four implementations of [Engine] share one contract: Recommend takes explicit
// [Params]; Generate uses the engine's configured defaults. Each returns a [Result]
// holding one [Recommendation] per selected track ("name by artist" plus its catalog
// URI when one was found), the publishable URI list and a playlist name.
//
//  1. [GenreEngine] : seed tag plus its first two similar tags, top tracks per tag,
//     deduplicated by display string, stopping once the limit is reached.
//  2. [UserEngine] : the user's top artists, their similar artists weighted by rank,
//     a share of 30 tracks per candidate artist.
//  3. [SeasonalEngine] : a random tag from the palette for the season (from an
//     injectable clock), 30 of its top tracks.
//  4. [WeatherEngine] : tags mapped from the current weather at the caller's city.
//
// [AlbumPicker] is not an engine; it returns one random saved album.
//
// # Progress Reporting
//
// Engines accept an optional channel of [ProgressUpdate]. Sends never block: an update
// is dropped when the channel is full.
package recommend
