package publish

import "fmt"

// ProgressUpdate represents a progress event while a playlist is published.
type ProgressUpdate struct {
	Phase    Phase
	Platform string
	Step     int
	Total    int
	Message  string
}

// Phase enumerates the publishing stages.
type Phase int

const (
	CreatePlaylist Phase = iota
	AddTracks
	DescribeTracks
	SearchVideos
	InsertVideos
	Done
)

func (p Phase) String() string {
	switch p {
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case DescribeTracks:
		return "describe_tracks"
	case SearchVideos:
		return "search_videos"
	case InsertVideos:
		return "insert_videos"
	case Done:
		return "done"
	default:
		return ""
	}
}

// sendProgress never blocks: a full or nil channel drops the update.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func createUpdate(platform, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    CreatePlaylist,
		Platform: platform,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Creating or finding %s playlist %q...", platform, name),
	}
}

func addUpdate(platform string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:    AddTracks,
		Platform: platform,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Adding %d tracks...", count),
	}
}

func describeUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:    DescribeTracks,
		Platform: PlatformYouTube,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Looking up %d tracks...", count),
	}
}

func searchUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    SearchVideos,
		Platform: PlatformYouTube,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Searching videos for %s", step, total, query),
	}
}

func insertUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    InsertVideos,
		Platform: PlatformYouTube,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Adding %s", step, total, title),
	}
}

func doneUpdate(r *PlatformResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Done,
		Platform: r.Platform,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Added %d items to %s playlist %s", r.Added, r.Platform, r.PlaylistID),
	}
}
