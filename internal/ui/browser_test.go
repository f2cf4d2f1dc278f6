package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestBrowserFileSelectionReturnsMessage(t *testing.T) {
	dir := tempDirWith(t, map[string]string{
		"song.mp3": "data",
	})

	m := NewBrowser(dir)

	// Test signal, open path, then the file.
	for range 2 {
		model, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = model.(BrowserModel)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}

	msg := cmd()
	selected, ok := msg.(BrowserSelectedMsg)
	if !ok {
		t.Fatalf("expected BrowserSelectedMsg, got %T", msg)
	}
	if selected.Path != filepath.Join(dir, "song.mp3") || selected.TestSignal {
		t.Fatalf("unexpected selection %+v", selected)
	}
}

func TestBrowserTestSignalIsFirst(t *testing.T) {
	m := NewBrowser(tempDirWith(t, nil))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	selected, ok := cmd().(BrowserSelectedMsg)
	if !ok || !selected.TestSignal {
		t.Fatalf("expected test signal selection, got %+v", selected)
	}
}

func TestBrowserPathSelectionReturnsMessage(t *testing.T) {
	m := NewBrowser(tempDirWith(t, nil))
	m.pathMode = true
	m.input.SetValue("  /music/set.m3u ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected path selection command")
	}

	msg := cmd()
	selected, ok := msg.(BrowserSelectedMsg)
	if !ok {
		t.Fatalf("expected BrowserSelectedMsg, got %T", msg)
	}
	if selected.Path != "/music/set.m3u" {
		t.Fatalf("expected trimmed path, got %q", selected.Path)
	}
}

func TestBrowserPathModeEscReturnsToList(t *testing.T) {
	m := NewBrowser(tempDirWith(t, nil))
	m.pathMode = true
	m.input.SetValue("x")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(BrowserModel)
	if m.pathMode || m.input.Value() != "" {
		t.Fatal("expected path mode to be left and cleared")
	}
}

func TestBrowserCancelReturnsMessage(t *testing.T) {
	m := NewBrowser(tempDirWith(t, nil))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected cancel command")
	}

	if _, ok := cmd().(BrowserCancelledMsg); !ok {
		t.Fatalf("expected BrowserCancelledMsg, got %T", cmd())
	}
}

func TestBrowserListsPlayableFilesAndPlaylists(t *testing.T) {
	dir := tempDirWith(t, map[string]string{
		"a.flac":    "data",
		"b.ogg":     "data",
		"mix.m3u":   "data",
		"notes.txt": "data",
		"video.mp4": "data",
	})

	m := NewBrowser(dir)

	var names []string
	for _, item := range m.list.Items() {
		if file, ok := item.(fileItem); ok {
			names = append(names, file.name+file.ext)
		}
	}
	want := []string{"a.flac", "b.ogg", "mix.m3u"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestBrowserMissingDirectory(t *testing.T) {
	m := NewBrowser(filepath.Join(t.TempDir(), "missing"))
	if !m.HasError() {
		t.Fatal("expected an error for a missing directory")
	}
}

func tempDirWith(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
