package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/olivier-w/cymascope/internal/chladni"
	"github.com/olivier-w/cymascope/internal/player"
	"github.com/olivier-w/cymascope/internal/prefs"
	"github.com/olivier-w/cymascope/internal/queue"
	"github.com/olivier-w/cymascope/internal/spectrum"
	"github.com/olivier-w/cymascope/internal/util"
)

const (
	// DefaultFPS is the frame rate of the render loop.
	DefaultFPS = 60

	noticeTTL = 5 * time.Second

	sensitivityStep = 1.25
	scaleStep       = 10.0
	minScale        = 10.0

	// Rows outside the frame: margins, header, status, tuner, notice and
	// help.
	chromeRows = 10
)

// Audio is a playing source the visualizer can listen to.
type Audio interface {
	spectrum.Source
	TogglePause()
	Paused() bool
	Close()
}

// track is Audio with a known length, such as a decoded file.
type track interface {
	Position() time.Duration
	Duration() time.Duration
	Done() <-chan struct{}
	Restart() error
}

type retuner interface {
	SetFrequency(hz float64)
}

// Opener starts playback of the file at path.
type Opener func(path string) (Audio, player.Metadata, error)

// OpenFile plays path through the speakers.
func OpenFile(path string) (Audio, player.Metadata, error) {
	p, err := player.New(path)
	if err != nil {
		return nil, player.Metadata{}, err
	}
	return p, player.ReadMetadata(path), nil
}

// Options configures a Model. Only Driver is required.
type Options struct {
	Driver      *chladni.Driver
	FPS         int
	Logger      *slog.Logger
	Prefs       *prefs.Store
	Audio       Audio
	Metadata    player.Metadata
	Queue       *queue.Queue
	Open        Opener
	Notice      string
	SnapshotDir string
	Theme       Theme
	ShowTuner   bool
}

// Model is the Bubbletea model hosting the visualizer.
type Model struct {
	driver  *chladni.Driver
	reading chladni.Reading
	fps     int
	log     *slog.Logger
	store   *prefs.Store

	audio    Audio
	metadata player.Metadata
	queue    *queue.Queue
	open     Opener
	opening  bool
	repeat   RepeatMode

	keys       keyMap
	help       help.Model
	refInput   textinput.Model
	editingRef bool

	showTuner bool
	tuner     tunerReadout
	theme     Theme
	profile   colorProfile

	width  int
	height int

	notice      string
	noticeTime  time.Time
	saving      bool
	snapshotDir string
	quitting    bool
}

// New creates a Model. A playing Audio is attached to the driver at once.
func New(opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	open := opts.Open
	if open == nil {
		open = OpenFile
	}
	dir := opts.SnapshotDir
	if dir == "" {
		dir = "."
	}

	ti := textinput.New()
	ti.Placeholder = "440"
	ti.CharLimit = 10
	ti.Width = 10
	ti.Prompt = "A4 = "

	m := Model{
		driver:      opts.Driver,
		fps:         fps,
		log:         log,
		store:       opts.Prefs,
		audio:       opts.Audio,
		metadata:    opts.Metadata,
		queue:       opts.Queue,
		open:        open,
		keys:        newKeyMap(),
		help:        help.New(),
		refInput:    ti,
		showTuner:   opts.ShowTuner,
		tuner:       newTunerReadout(fps),
		theme:       ParseTheme(string(opts.Theme)),
		profile:     currentColorProfile(),
		snapshotDir: dir,
	}
	m.keys.setQueue(m.queue != nil && m.queue.Len() > 1)
	if opts.Notice != "" {
		m.setNotice(opts.Notice)
	}
	if m.audio != nil && !m.audio.Paused() {
		m.apply(chladni.AttachSource{Source: m.audio})
	}
	return m
}

func (m Model) Init() tea.Cmd {
	applyTheme(m.theme)
	return tea.Batch(frameCmd(m.fps), watchDone(m.audio), tea.SetWindowTitle(m.windowTitle()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editingRef {
			return m.updateRefInput(msg)
		}
		return m.handleKey(msg)

	case frameMsg:
		now := time.Time(msg)
		m.reading = m.driver.Tick(now)
		m.tuner.update(m.reading, m.driver.Reference(), now)
		if m.notice != "" && now.Sub(m.noticeTime) > noticeTTL {
			m.notice = ""
		}
		return m, frameCmd(m.fps)

	case playbackEndedMsg:
		if msg.audio != m.audio {
			return m, nil
		}
		return m.handlePlaybackEnded()

	case trackOpenedMsg:
		return m.handleTrackOpened(msg)

	case snapshotSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.log.Error("snapshot failed", "error", msg.err)
			m.setNotice(fmt.Sprintf("Save failed: %v", msg.err))
			return m, nil
		}
		m.log.Info("snapshot saved", "path", msg.path, "bytes", msg.size)
		m.setNotice(fmt.Sprintf("Saved %s (%s)", filepath.Base(msg.path), humanize.Bytes(uint64(msg.size))))
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.log.Warn("saving preferences", "error", msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4
		m.resize()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.stopAudio()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, m.keys.Play):
		if m.audio == nil {
			if !m.opening {
				m.setNotice("No audio loaded")
			}
			return m, nil
		}
		m.audio.TogglePause()
		if m.audio.Paused() {
			m.apply(chladni.DetachSource{})
			m.tuner.reset()
		} else {
			m.apply(chladni.AttachSource{Source: m.audio})
		}
		return m, tea.SetWindowTitle(m.windowTitle())

	case key.Matches(msg, m.keys.TestMode):
		m.apply(chladni.SetTestMode{On: !m.driver.TestMode()})
		return m, nil

	case key.Matches(msg, m.keys.TestPattern):
		m.apply(chladni.SetTestPattern{Pattern: m.driver.TestPattern().Next()})
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Ramp):
		m.apply(chladni.SetRamp{Name: m.driver.Ramp().Next()})
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Louder):
		m.apply(chladni.SetSensitivity{Gain: m.driver.Sensitivity() * sensitivityStep})
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Softer):
		m.apply(chladni.SetSensitivity{Gain: m.driver.Sensitivity() / sensitivityStep})
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.ScaleUp):
		m.apply(chladni.SetScale{Factor: m.driver.Scale() + scaleStep})
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.ScaleDown):
		m.apply(chladni.SetScale{Factor: max(minScale, m.driver.Scale()-scaleStep)})
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Reference):
		m.editingRef = true
		m.refInput.SetValue(strconv.FormatFloat(m.driver.Reference(), 'f', -1, 64))
		m.refInput.CursorEnd()
		cmd := m.refInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Tuner):
		m.showTuner = !m.showTuner
		m.resize()
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Theme):
		m.theme = m.theme.Next()
		applyTheme(m.theme)
		m.setNotice("Theme: " + string(m.theme))
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Snapshot):
		return m.snapshot()

	case key.Matches(msg, m.keys.Next):
		if m.queue == nil || m.opening || !m.queue.Advance(m.repeat == RepeatAll) {
			return m, nil
		}
		return m.switchTrack()

	case key.Matches(msg, m.keys.Prev):
		if m.queue == nil || m.opening || !m.queue.Previous() {
			return m, nil
		}
		return m.switchTrack()

	case key.Matches(msg, m.keys.Repeat):
		m.repeat = m.repeat.Next()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}
	return m, nil
}

func (m Model) updateRefInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editingRef = false
		m.refInput.Blur()
		hz, err := strconv.ParseFloat(strings.TrimSpace(m.refInput.Value()), 64)
		if err != nil {
			m.setNotice(fmt.Sprintf("Invalid reference %q", m.refInput.Value()))
			return m, nil
		}
		if !m.apply(chladni.SetReference{Hz: hz}) {
			return m, nil
		}
		if r, ok := m.audio.(retuner); ok {
			r.SetFrequency(hz)
		}
		m.setNotice("Tuning A4 = " + util.FormatHz(hz))
		return m, m.savePrefs()
	case "esc", "ctrl+c":
		m.editingRef = false
		m.refInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.refInput, cmd = m.refInput.Update(msg)
	return m, cmd
}

func (m Model) snapshot() (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	f := m.driver.Frame()
	if f.W == 0 || f.H == 0 {
		m.setNotice("Nothing to save yet")
		return m, nil
	}
	m.saving = true
	m.setNotice("Saving snapshot...")
	return m, saveSnapshotCmd(f.Image(), m.snapshotDir)
}

func (m Model) handlePlaybackEnded() (Model, tea.Cmd) {
	if m.repeat == RepeatOne {
		if t, ok := m.audio.(track); ok {
			err := t.Restart()
			if err == nil {
				return m, watchDone(m.audio)
			}
			m.log.Error("restarting track", "error", err)
		}
	}
	if m.queue != nil && m.queue.Advance(m.repeat == RepeatAll) {
		return m.switchTrack()
	}
	m.stopAudio()
	m.setNotice("Playback finished")
	return m, tea.SetWindowTitle(m.windowTitle())
}

func (m Model) handleTrackOpened(msg trackOpenedMsg) (Model, tea.Cmd) {
	m.opening = false
	if m.queue == nil || msg.index != m.queue.CurrentIndex() {
		// The user skipped on while this track was opening.
		if msg.audio != nil {
			msg.audio.Close()
		}
		return m, nil
	}

	if msg.err != nil {
		t := m.queue.Current()
		m.log.Error("cannot open track", "path", t.Path, "error", msg.err)
		m.queue.MarkFailed()
		m.setNotice(fmt.Sprintf("Cannot play %s: %v", t.Title, msg.err))
		if m.queue.Advance(false) {
			return m.switchTrack()
		}
		return m, tea.SetWindowTitle(m.windowTitle())
	}

	m.audio = msg.audio
	m.metadata = msg.meta
	m.notice = ""
	m.apply(chladni.AttachSource{Source: m.audio})
	return m, tea.Batch(watchDone(m.audio), tea.SetWindowTitle(m.windowTitle()))
}

// switchTrack closes the current audio and opens the queue's current track
// in the background.
func (m Model) switchTrack() (Model, tea.Cmd) {
	m.stopAudio()
	t := m.queue.Current()
	m.opening = true
	m.metadata = player.Metadata{Title: t.Title}
	m.setNotice("Opening " + t.Title + "...")
	return m, openTrackCmd(m.open, m.queue.CurrentIndex(), t.Path)
}

func openTrackCmd(open Opener, index int, path string) tea.Cmd {
	return func() tea.Msg {
		a, meta, err := open(path)
		return trackOpenedMsg{index: index, audio: a, meta: meta, err: err}
	}
}

func watchDone(a Audio) tea.Cmd {
	t, ok := a.(track)
	if !ok {
		return nil
	}
	done := t.Done()
	return func() tea.Msg {
		<-done
		return playbackEndedMsg{audio: a}
	}
}

func (m *Model) stopAudio() {
	if m.audio != nil {
		m.apply(chladni.DetachSource{})
		m.audio.Close()
		m.audio = nil
	}
	m.tuner.reset()
}

// apply runs a driver command, turning a rejection into a notice.
func (m *Model) apply(cmd chladni.Command) bool {
	if err := m.driver.Apply(cmd); err != nil {
		m.log.Warn("command rejected", "command", fmt.Sprintf("%T", cmd), "error", err)
		m.setNotice(err.Error())
		return false
	}
	return true
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeTime = time.Now()
}

// resize fits the largest square frame into the space left by the chrome.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	rows := m.height - chromeRows
	if m.showTuner {
		rows--
	}
	if m.help.ShowAll {
		rows -= 2
	}
	side := frameSide(m.width-4, rows) &^ 1
	m.apply(chladni.Resize{W: side, H: side})
}

// Settings returns the persisted view of the current configuration.
func (m Model) Settings() prefs.Settings {
	return prefs.Settings{
		Ramp:        string(m.driver.Ramp()),
		Sensitivity: m.driver.Sensitivity(),
		Scale:       m.driver.Scale(),
		Reference:   m.driver.Reference(),
		Theme:       string(m.theme),
		TestPattern: m.driver.TestPattern().String(),
		Tuner:       m.showTuner,
	}
}

func (m Model) savePrefs() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store, st := m.store, m.Settings()
	return func() tea.Msg {
		return prefsSavedMsg{err: store.Save(st)}
	}
}

func (m Model) windowTitle() string {
	label := m.metadata.Label()
	switch {
	case m.audio == nil || label == "":
		return "cymascope"
	case m.audio.Paused():
		return "⏸ " + label + " - cymascope"
	default:
		return "▶ " + label + " - cymascope"
	}
}
