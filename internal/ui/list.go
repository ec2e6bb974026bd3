package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songrec/internal/publish"
	"github.com/desertthunder/songrec/internal/recommend"
)

var (
	_ list.Item = menuItem{}
	_ list.Item = platformItem{}
)

// EngineAlbum is the menu entry for the album picker, which is not a [recommend.Engine].
const EngineAlbum = "album"

// menuItem is one entry in the engine menu.
type menuItem struct {
	name  string
	title string
	desc  string
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

func menuItems() []list.Item {
	return []list.Item{
		menuItem{recommend.EngineGenre, "Genre", "Top tracks for a genre and two similar tags"},
		menuItem{recommend.EngineUser, "User", "Artists similar to your top artists"},
		menuItem{EngineAlbum, "Album", "A random album from your library"},
		menuItem{recommend.EngineSeasonal, "Seasonal", "A genre picked for the season and time of day"},
		menuItem{recommend.EngineWeather, "Weather", "Genres that suit the weather outside"},
	}
}

// platformItem is one publish target.
type platformItem struct {
	platform string
	title    string
}

func (i platformItem) FilterValue() string { return i.title }
func (i platformItem) Title() string       { return i.title }
func (i platformItem) Description() string {
	switch i.platform {
	case publish.PlatformSpotify:
		return "Create or extend a private Spotify playlist"
	case publish.PlatformYouTube:
		return "Search a video for every track and build a YouTube playlist"
	default:
		return "Spotify first, then YouTube"
	}
}

func platformItems() []list.Item {
	return []list.Item{
		platformItem{publish.PlatformSpotify, "Spotify"},
		platformItem{publish.PlatformYouTube, "YouTube"},
		platformItem{publish.PlatformBoth, "Both"},
	}
}
