package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/tasks"
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
	MsgArtistsLoaded MsgKind = iota
	MsgSaveComplete
	MsgSyncOpened
	MsgSyncEvent
	MsgSyncClosed
)

type artistsLoaded struct {
	artists []models.Artist
	err     error
}

type syncOpened struct {
	token  string
	events <-chan tasks.Event
	err    error
}

type syncEvent struct {
	token string
	event tasks.Event
}

// artistsLoadedMsg is the constructor for [MsgArtistsLoaded]
func artistsLoadedMsg(artists []models.Artist, err error) Msg {
	return Msg{kind: MsgArtistsLoaded, data: artistsLoaded{artists, err}}
}

// saveCompleteMsg is the constructor for [MsgSaveComplete]. data is the commit error, possibly nil.
func saveCompleteMsg(err error) Msg {
	return Msg{kind: MsgSaveComplete, data: err}
}

// syncOpenedMsg is the constructor for [MsgSyncOpened]
func syncOpenedMsg(token string, events <-chan tasks.Event, err error) Msg {
	return Msg{kind: MsgSyncOpened, data: syncOpened{token, events, err}}
}

// syncEventMsg is the constructor for [MsgSyncEvent]
func syncEventMsg(token string, ev tasks.Event) Msg {
	return Msg{kind: MsgSyncEvent, data: syncEvent{token, ev}}
}

// syncClosedMsg is the constructor for [MsgSyncClosed]
func syncClosedMsg(token string) Msg {
	return Msg{kind: MsgSyncClosed, data: token}
}
