package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/cymascope/internal/media"
)

// BrowserSelectedMsg reports the entry picked in the browser.
type BrowserSelectedMsg struct {
	Path       string
	TestSignal bool
}

// BrowserCancelledMsg reports that the user left the browser.
type BrowserCancelledMsg struct{}

type fileItem struct {
	name string
	ext  string
}

func (i fileItem) Title() string { return i.name }
func (i fileItem) Description() string {
	if media.IsPlaylistExt(i.ext) {
		return i.ext + " playlist"
	}
	return i.ext
}
func (i fileItem) FilterValue() string { return i.name }

type testSignalItem struct{}

func (testSignalItem) Title() string       { return "Test signal" }
func (testSignalItem) Description() string { return "sine tone at the tuning reference" }
func (testSignalItem) FilterValue() string { return "test signal" }

type pathItem struct{}

func (pathItem) Title() string       { return "Open path..." }
func (pathItem) Description() string { return "type the path of an audio file or playlist" }
func (pathItem) FilterValue() string { return "path" }

// BrowserModel lists the playable files of a directory.
type BrowserModel struct {
	dir      string
	list     list.Model
	input    textinput.Model
	pathMode bool
	err      error
}

// NewBrowser creates a browser over the files of dir.
func NewBrowser(dir string) BrowserModel {
	names, err := media.ListDir(dir)
	if err != nil {
		return BrowserModel{err: fmt.Errorf("cannot read directory: %w", err)}
	}

	items := []list.Item{testSignalItem{}, pathItem{}}
	for _, name := range names {
		ext := filepath.Ext(name)
		items = append(items, fileItem{name: strings.TrimSuffix(name, ext), ext: ext})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(items, delegate, 80, 20)
	l.Title = "cymascope"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	ti := textinput.New()
	ti.Placeholder = "path/to/file.mp3"
	ti.CharLimit = 4096
	ti.Width = 60

	return BrowserModel{dir: dir, list: l, input: ti}
}

// HasError returns true if the browser could not be initialized.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("cymascope")
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.pathMode {
		return m.updatePathInput(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			switch item := m.list.SelectedItem().(type) {
			case testSignalItem:
				return m, selected(BrowserSelectedMsg{TestSignal: true})
			case pathItem:
				m.pathMode = true
				m.input.Focus()
				return m, tea.Batch(textinput.Blink, tea.SetWindowTitle("cymascope - open path"))
			case fileItem:
				return m, selected(BrowserSelectedMsg{Path: filepath.Join(m.dir, item.name+item.ext)})
			}
		case "q", "esc", "ctrl+c":
			return m, func() tea.Msg { return BrowserCancelledMsg{} }
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) updatePathInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if path := strings.TrimSpace(m.input.Value()); path != "" {
				return m, selected(BrowserSelectedMsg{Path: path})
			}
		case "esc":
			m.pathMode = false
			m.input.Reset()
			m.input.Blur()
			return m, tea.SetWindowTitle("cymascope")
		case "ctrl+c":
			return m, func() tea.Msg { return BrowserCancelledMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func selected(msg BrowserSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m BrowserModel) View() string {
	if m.pathMode {
		s := "\n"
		s += "  " + headerStyle.Render("cymascope") + "\n"
		s += "\n"
		s += "  " + statusStyle.Render("Open path:") + "\n"
		s += "  " + m.input.View() + "\n"
		s += "\n"
		s += "  " + helpStyle.Render("enter confirm  esc back  ctrl+c quit") + "\n"
		return s
	}
	return m.list.View()
}
