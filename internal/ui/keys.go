package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Play        key.Binding
	TestMode    key.Binding
	TestPattern key.Binding
	Ramp        key.Binding
	Louder      key.Binding
	Softer      key.Binding
	ScaleDown   key.Binding
	ScaleUp     key.Binding
	Reference   key.Binding
	Tuner       key.Binding
	Theme       key.Binding
	Snapshot    key.Binding
	Next        key.Binding
	Prev        key.Binding
	Repeat      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Play:        key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "audio")),
		TestMode:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test")),
		TestPattern: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pattern")),
		Ramp:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "colours")),
		Louder:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "sensitivity")),
		Softer:      key.NewBinding(key.WithKeys("-", "_")),
		ScaleDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "scale")),
		ScaleUp:     key.NewBinding(key.WithKeys("]")),
		Reference:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "tuning")),
		Tuner:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "tuner")),
		Theme:       key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Snapshot:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),
		Next:        key.NewBinding(key.WithKeys(">", "."), key.WithHelp("</>", "track")),
		Prev:        key.NewBinding(key.WithKeys("<", ",")),
		Repeat:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.TestMode, k.Ramp, k.Louder, k.Tuner, k.Snapshot, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.TestMode, k.TestPattern},
		{k.Ramp, k.Louder, k.ScaleDown},
		{k.Reference, k.Tuner, k.Theme},
		{k.Snapshot, k.Next, k.Repeat},
		{k.Help, k.Quit},
	}
}

// setQueue hides the track keys when there is nothing to skip to.
func (k *keyMap) setQueue(enabled bool) {
	k.Next.SetEnabled(enabled)
	k.Prev.SetEnabled(enabled)
}

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}
