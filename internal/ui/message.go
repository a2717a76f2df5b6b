package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songdash/internal/models"
	"github.com/desertthunder/songdash/internal/session"
	"github.com/desertthunder/songdash/internal/tasks"
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
	MsgSnapshotLoaded MsgKind = iota
	MsgProgressUpdate
)

type snapshotLoaded struct {
	ticket   session.Ticket
	snapshot *models.Snapshot
	err      error
}

type progressUpdate struct {
	update tasks.ProgressUpdate
	ch     <-chan tasks.ProgressUpdate
}

// snapshotLoadedMsg is the constructor for [MsgSnapshotLoaded]
func snapshotLoadedMsg(t session.Ticket, snap *models.Snapshot, err error) Msg {
	return Msg{kind: MsgSnapshotLoaded, data: snapshotLoaded{ticket: t, snapshot: snap, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate, ch <-chan tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: progressUpdate{update: update, ch: ch}}
}
