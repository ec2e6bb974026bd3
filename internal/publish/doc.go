// Package publish turns a recommendation batch into a playlist on Spotify, YouTube or both.
//
// Spotify receives the catalog URIs in batches of 100. YouTube has no catalog URIs, so each
// track is described through the catalog, searched on the video platform and inserted
// individually into a private playlist. Playlists are found by name before one is created,
// so publishing the same batch twice reuses the playlist.
package publish
