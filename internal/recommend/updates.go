package recommend

import "fmt"

// ProgressUpdate represents a progress event during a recommendation run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase enumerates the stages an engine reports.
type Phase int

const (
	FetchSimilar Phase = iota
	FetchTopTracks
	ResolveURIs
	FetchTopArtists
	FetchArtistTracks
	LocateCaller
	FetchWeather
	PickGenre
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchSimilar:
		return "fetch_similar"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case ResolveURIs:
		return "resolve_uris"
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchArtistTracks:
		return "fetch_artist_tracks"
	case LocateCaller:
		return "locate_caller"
	case FetchWeather:
		return "fetch_weather"
	case PickGenre:
		return "pick_genre"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func similarUpdate(seed string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSimilar,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Finding tags similar to %s...", seed),
	}
}

func tagTracksUpdate(step, total int, tag string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching top %s tracks...", step, total, tag),
	}
}

func resolveUpdate(step, total int, label string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveURIs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching catalog for %s", label),
	}
}

func topArtistsUpdate(timeRange string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTopArtists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching your top artists (%s)...", timeRange),
	}
}

func artistTracksUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtistTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tracks by %s...", step, total, artist),
	}
}

func locateUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: LocateCaller, Step: 1, Total: 1, Message: "Finding your location..."}
}

func weatherUpdate(city string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWeather,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking the weather in %s...", city),
	}
}

func pickGenreUpdate(genre, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PickGenre,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Picked %s for %s", genre, reason),
		Data:    genre,
	}
}

func completeUpdate(result *Result) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s: %d tracks, %d with catalog matches", result.PlaylistName, len(result.Tracks), len(result.URIs)),
		Data:    result,
	}
}
