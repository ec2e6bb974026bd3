package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songrec/internal/publish"
	"github.com/desertthunder/songrec/internal/recommend"
	"github.com/desertthunder/songrec/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRecommendProgress MsgKind = iota
	MsgRecommendDone
	MsgAlbumPicked
	MsgPublishProgress
	MsgPublishDone
)

type recommendDone struct {
	result *recommend.Result
	err    error
}

type albumPicked struct {
	album *services.Album
	err   error
}

type publishDone struct {
	result *publish.Result
	err    error
}

// recommendProgressMsg is the constructor for [MsgRecommendProgress]
func recommendProgressMsg(update recommend.ProgressUpdate) Msg {
	return Msg{kind: MsgRecommendProgress, data: update}
}

// recommendDoneMsg is the constructor for [MsgRecommendDone]
func recommendDoneMsg(result *recommend.Result, err error) Msg {
	return Msg{kind: MsgRecommendDone, data: recommendDone{result, err}}
}

// albumPickedMsg is the constructor for [MsgAlbumPicked]
func albumPickedMsg(album *services.Album, err error) Msg {
	return Msg{kind: MsgAlbumPicked, data: albumPicked{album, err}}
}

// publishProgressMsg is the constructor for [MsgPublishProgress]
func publishProgressMsg(update publish.ProgressUpdate) Msg {
	return Msg{kind: MsgPublishProgress, data: update}
}

// publishDoneMsg is the constructor for [MsgPublishDone]
func publishDoneMsg(result *publish.Result, err error) Msg {
	return Msg{kind: MsgPublishDone, data: publishDone{result, err}}
}
