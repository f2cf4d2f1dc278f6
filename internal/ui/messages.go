package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/cymascope/internal/player"
)

type frameMsg time.Time

type playbackEndedMsg struct {
	audio Audio
}

type trackOpenedMsg struct {
	index int
	audio Audio
	meta  player.Metadata
	err   error
}

type snapshotSavedMsg struct {
	path string
	size int64
	err  error
}

type prefsSavedMsg struct {
	err error
}

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(max(fps, 1)), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
