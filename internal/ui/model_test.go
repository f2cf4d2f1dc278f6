package ui

import (
	"errors"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/cymascope/internal/chladni"
	"github.com/olivier-w/cymascope/internal/player"
	"github.com/olivier-w/cymascope/internal/prefs"
	"github.com/olivier-w/cymascope/internal/queue"
	"github.com/olivier-w/cymascope/internal/spectrum"
)

// fakeAudio reports a single spectral line at hz with 1 Hz bins.
type fakeAudio struct {
	hz       int
	paused   bool
	closed   bool
	restarts int
	retuned  float64
	done     chan struct{}
}

func newFakeAudio(hz int) *fakeAudio {
	return &fakeAudio{hz: hz, done: make(chan struct{})}
}

func (f *fakeAudio) Latest(dst spectrum.Spectrum) bool {
	clear(dst)
	dst[f.hz] = 200
	return true
}

func (f *fakeAudio) SampleRate() float64     { return 2 * spectrum.Bins }
func (f *fakeAudio) TogglePause()            { f.paused = !f.paused }
func (f *fakeAudio) Paused() bool            { return f.paused }
func (f *fakeAudio) Close()                  { f.closed = true }
func (f *fakeAudio) SetFrequency(hz float64) { f.retuned = hz }

// fakeTrack adds a length and end-of-track signal.
type fakeTrack struct {
	*fakeAudio
}

func (f fakeTrack) Position() time.Duration { return time.Second }
func (f fakeTrack) Duration() time.Duration { return time.Minute }
func (f fakeTrack) Done() <-chan struct{}   { return f.done }
func (f fakeTrack) Restart() error {
	f.restarts++
	return nil
}

func testDriver(t *testing.T) *chladni.Driver {
	t.Helper()
	cfg := chladni.DefaultConfig()
	cfg.FieldSize = 16
	cfg.Workers = 1
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := chladni.NewDriver(cfg)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d
}

func testModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Driver == nil {
		opts.Driver = testDriver(t)
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(opts)
	m.profile = colorNone
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewAttachesPlayingAudio(t *testing.T) {
	m := testModel(t, Options{Audio: newFakeAudio(440)})
	if got := m.driver.State(); got != chladni.StateActive {
		t.Fatalf("expected active driver, got %v", got)
	}

	paused := newFakeAudio(440)
	paused.paused = true
	m = testModel(t, Options{Audio: paused})
	if got := m.driver.State(); got != chladni.StateIdle {
		t.Fatalf("expected idle driver for paused audio, got %v", got)
	}
}

func TestSpaceTogglesAudioAndSource(t *testing.T) {
	a := newFakeAudio(440)
	m := testModel(t, Options{Audio: a})

	m, _ = m.handleMsg(keyPress(" "))
	if !a.paused {
		t.Fatal("expected audio to pause")
	}
	if m.driver.State() != chladni.StateIdle {
		t.Fatal("expected source detached while paused")
	}

	m, _ = m.handleMsg(keyPress(" "))
	if a.paused {
		t.Fatal("expected audio to resume")
	}
	if m.driver.State() != chladni.StateActive {
		t.Fatal("expected source attached after resume")
	}
}

func TestSpaceWithoutAudioShowsNotice(t *testing.T) {
	m := testModel(t, Options{})
	m, _ = m.handleMsg(keyPress(" "))
	if m.notice == "" {
		t.Fatal("expected a notice when no audio is loaded")
	}
	if m.driver.State() != chladni.StateIdle {
		t.Fatal("expected driver to stay idle")
	}
}

func TestKeysDispatchDriverCommands(t *testing.T) {
	tests := []struct {
		key   string
		check func(d *chladni.Driver) bool
	}{
		{"c", func(d *chladni.Driver) bool { return d.Ramp() == chladni.RampGrayscale }},
		{"+", func(d *chladni.Driver) bool { return d.Sensitivity() == 1.25 }},
		{"-", func(d *chladni.Driver) bool { return d.Sensitivity() == 0.8 }},
		{"]", func(d *chladni.Driver) bool { return d.Scale() == 110 }},
		{"[", func(d *chladni.Driver) bool { return d.Scale() == 90 }},
		{"t", func(d *chladni.Driver) bool { return d.TestMode() }},
		{"p", func(d *chladni.Driver) bool { return d.TestPattern() == spectrum.PatternDrift }},
	}

	for _, tt := range tests {
		m := testModel(t, Options{})
		m, _ = m.handleMsg(keyPress(tt.key))
		if !tt.check(m.driver) {
			t.Fatalf("key %q did not reach the driver", tt.key)
		}
	}
}

func TestScaleDownStopsAtMinimum(t *testing.T) {
	m := testModel(t, Options{})
	if err := m.driver.Apply(chladni.SetScale{Factor: 15}); err != nil {
		t.Fatalf("SetScale: %v", err)
	}
	m, _ = m.handleMsg(keyPress("["))
	m, _ = m.handleMsg(keyPress("["))
	if got := m.driver.Scale(); got != minScale {
		t.Fatalf("expected scale %v, got %v", minScale, got)
	}
}

func TestReferenceInputAppliesAndRetunes(t *testing.T) {
	a := newFakeAudio(440)
	m := testModel(t, Options{Audio: a})

	m, _ = m.handleMsg(keyPress("f"))
	if !m.editingRef {
		t.Fatal("expected reference input to open")
	}
	if got := m.refInput.Value(); got != "440" {
		t.Fatalf("expected input prefilled with 440, got %q", got)
	}

	// Keys go to the input, not the key map.
	m, _ = m.handleMsg(keyPress("c"))
	if m.driver.Ramp() != chladni.RampRainbow {
		t.Fatal("expected keys to be captured by the input")
	}

	m.refInput.SetValue("442")
	m, _ = m.handleMsg(keyPress("enter"))
	if m.editingRef {
		t.Fatal("expected input to close on enter")
	}
	if got := m.driver.Reference(); got != 442 {
		t.Fatalf("expected reference 442, got %v", got)
	}
	if a.retuned != 442 {
		t.Fatalf("expected audio retuned to 442, got %v", a.retuned)
	}
}

func TestReferenceInputRejectsBadValues(t *testing.T) {
	for _, value := range []string{"abc", "-5", "0"} {
		m := testModel(t, Options{})
		m, _ = m.handleMsg(keyPress("f"))
		m.refInput.SetValue(value)
		m, _ = m.handleMsg(keyPress("enter"))
		if got := m.driver.Reference(); got != 440 {
			t.Fatalf("%q: expected reference to stay 440, got %v", value, got)
		}
		if m.notice == "" {
			t.Fatalf("%q: expected a notice", value)
		}
	}
}

func TestReferenceInputEscCancels(t *testing.T) {
	m := testModel(t, Options{})
	m, _ = m.handleMsg(keyPress("f"))
	m.refInput.SetValue("415")
	m, _ = m.handleMsg(keyPress("esc"))
	if m.editingRef {
		t.Fatal("expected input to close")
	}
	if m.driver.Reference() != 440 {
		t.Fatal("expected reference unchanged")
	}
}

func TestFrameMsgTicksDriver(t *testing.T) {
	m := testModel(t, Options{Audio: newFakeAudio(440)})
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 40, Height: 30})

	m, cmd := m.handleMsg(frameMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected next frame to be scheduled")
	}
	if !m.reading.Acquired {
		t.Fatal("expected a spectrum to be consumed")
	}
	if !m.reading.HasNote || m.reading.Note.String() != "A4" {
		t.Fatalf("expected A4, got %v (has note %v)", m.reading.Note, m.reading.HasNote)
	}
	if !m.tuner.hasNote {
		t.Fatal("expected tuner readout to pick up the note")
	}
}

func TestNoticeExpires(t *testing.T) {
	m := testModel(t, Options{Notice: "hello"})
	m, _ = m.handleMsg(frameMsg(time.Now()))
	if m.notice != "hello" {
		t.Fatal("expected fresh notice to stay")
	}
	m, _ = m.handleMsg(frameMsg(time.Now().Add(noticeTTL + time.Second)))
	if m.notice != "" {
		t.Fatalf("expected notice to expire, got %q", m.notice)
	}
}

func TestWindowSizeResizesFrame(t *testing.T) {
	m := testModel(t, Options{})
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 80, Height: 40})
	if f := m.driver.Frame(); f.W != 60 || f.H != 60 {
		t.Fatalf("expected 60x60 frame, got %dx%d", f.W, f.H)
	}

	m, _ = m.handleMsg(keyPress("n"))
	if f := m.driver.Frame(); f.W != 58 {
		t.Fatalf("expected tuner line to shrink the frame to 58, got %d", f.W)
	}

	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 30, Height: 40})
	if f := m.driver.Frame(); f.W != 26 || f.H != 26 {
		t.Fatalf("expected width-bound 26x26 frame, got %dx%d", f.W, f.H)
	}
}

func TestPlaybackEndedRepeatOneRestarts(t *testing.T) {
	a := fakeTrack{newFakeAudio(440)}
	m := testModel(t, Options{Audio: a})
	m.repeat = RepeatOne

	m, cmd := m.handleMsg(playbackEndedMsg{audio: a})
	if a.restarts != 1 {
		t.Fatalf("expected one restart, got %d", a.restarts)
	}
	if cmd == nil {
		t.Fatal("expected end-of-track watch to be re-armed")
	}
	if m.audio == nil || a.closed {
		t.Fatal("expected audio to keep playing")
	}
}

func TestPlaybackEndedIgnoresStaleAudio(t *testing.T) {
	a := fakeTrack{newFakeAudio(440)}
	m := testModel(t, Options{Audio: a})

	stale := fakeTrack{newFakeAudio(220)}
	m, cmd := m.handleMsg(playbackEndedMsg{audio: stale})
	if cmd != nil {
		t.Fatal("expected no command for stale audio")
	}
	if m.audio == nil || a.closed {
		t.Fatal("expected current audio untouched")
	}
}

func TestPlaybackEndedWithoutQueueGoesIdle(t *testing.T) {
	a := fakeTrack{newFakeAudio(440)}
	m := testModel(t, Options{Audio: a})

	m, _ = m.handleMsg(playbackEndedMsg{audio: a})
	if !a.closed {
		t.Fatal("expected finished audio to be closed")
	}
	if m.audio != nil {
		t.Fatal("expected no audio after playback finished")
	}
	if m.driver.State() != chladni.StateIdle {
		t.Fatal("expected driver to be idle")
	}
	if m.notice != "Playback finished" {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}

func TestPlaybackEndedAdvancesQueue(t *testing.T) {
	first := fakeTrack{newFakeAudio(440)}
	second := fakeTrack{newFakeAudio(220)}
	var opened []string
	open := func(path string) (Audio, player.Metadata, error) {
		opened = append(opened, path)
		return second, player.Metadata{Title: "Second"}, nil
	}

	m := testModel(t, Options{
		Audio: first,
		Queue: queue.FromPaths([]string{"a.mp3", "b.mp3"}),
		Open:  open,
	})

	m, cmd := m.handleMsg(playbackEndedMsg{audio: first})
	if !first.closed {
		t.Fatal("expected first track closed")
	}
	if !m.opening || cmd == nil {
		t.Fatal("expected the next track to be opening")
	}

	m, _ = m.handleMsg(cmd())
	if len(opened) != 1 || opened[0] != "b.mp3" {
		t.Fatalf("expected b.mp3 to be opened, got %v", opened)
	}
	if m.audio != Audio(second) || m.metadata.Title != "Second" {
		t.Fatalf("expected second track to play, got %+v", m.metadata)
	}
	if m.driver.State() != chladni.StateActive {
		t.Fatal("expected second track attached")
	}
}

func TestTrackOpenFailureSkipsToNext(t *testing.T) {
	open := func(path string) (Audio, player.Metadata, error) {
		if path == "b.mp3" {
			return nil, player.Metadata{}, errors.New("corrupt")
		}
		return newFakeAudio(440), player.Metadata{Title: path}, nil
	}
	q := queue.FromPaths([]string{"a.mp3", "b.mp3", "c.mp3"})
	m := testModel(t, Options{Audio: newFakeAudio(440), Queue: q, Open: open})

	m, cmd := m.handleMsg(keyPress(">"))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	m, cmd = m.handleMsg(cmd())
	if !q.Track(1).Failed {
		t.Fatal("expected b.mp3 marked failed")
	}
	if cmd == nil || q.CurrentIndex() != 2 {
		t.Fatalf("expected skip to c.mp3, at %d", q.CurrentIndex())
	}
	m, _ = m.handleMsg(cmd())
	if m.audio == nil || m.metadata.Title != "c.mp3" {
		t.Fatalf("expected c.mp3 playing, got %+v", m.metadata)
	}
}

func TestSnapshotWritesPNG(t *testing.T) {
	dir := t.TempDir()
	m := testModel(t, Options{SnapshotDir: dir})
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 40, Height: 30})
	m, _ = m.handleMsg(frameMsg(time.Now()))

	m, cmd := m.handleMsg(keyPress("s"))
	if cmd == nil || !m.saving {
		t.Fatal("expected snapshot to start")
	}
	if _, again := m.handleMsg(keyPress("s")); again != nil {
		t.Fatal("expected a second snapshot to wait for the first")
	}

	msg, ok := cmd().(snapshotSavedMsg)
	if !ok {
		t.Fatalf("expected snapshotSavedMsg, got %T", cmd())
	}
	if msg.err != nil {
		t.Fatalf("snapshot: %v", msg.err)
	}
	if filepath.Dir(msg.path) != dir || !strings.HasPrefix(filepath.Base(msg.path), "cymascope-") {
		t.Fatalf("unexpected snapshot path %q", msg.path)
	}

	f, err := os.Open(msg.path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	side := m.driver.Frame().W
	if b := img.Bounds(); b.Dx() != side || b.Dy() != side {
		t.Fatalf("expected %dx%d image, got %v", side, side, b)
	}

	m, _ = m.handleMsg(msg)
	if m.saving || !strings.HasPrefix(m.notice, "Saved cymascope-") {
		t.Fatalf("unexpected state after save: saving=%v notice=%q", m.saving, m.notice)
	}
}

func TestSnapshotWithoutFrameShowsNotice(t *testing.T) {
	m := testModel(t, Options{SnapshotDir: t.TempDir()})
	m, cmd := m.handleMsg(keyPress("s"))
	if cmd != nil {
		t.Fatal("expected no snapshot for an empty frame")
	}
	if m.notice == "" {
		t.Fatal("expected a notice")
	}
}

func TestSnapshotFailureShowsNotice(t *testing.T) {
	m := testModel(t, Options{})
	m.saving = true
	m, _ = m.handleMsg(snapshotSavedMsg{err: errors.New("disk full")})
	if m.saving || !strings.HasPrefix(m.notice, "Save failed") {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}

func TestQuitClosesAudio(t *testing.T) {
	a := newFakeAudio(440)
	m := testModel(t, Options{Audio: a})
	m, cmd := m.handleMsg(keyPress("q"))
	if cmd == nil || !m.quitting {
		t.Fatal("expected quit")
	}
	if !a.closed {
		t.Fatal("expected audio closed on quit")
	}
	if m.View() != "" {
		t.Fatal("expected empty view after quitting")
	}
}

func TestPreferencesSavedOnChange(t *testing.T) {
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	defer store.Close()

	m := testModel(t, Options{Prefs: store})
	for _, k := range []string{"n", "c", "+"} {
		var cmd tea.Cmd
		m, cmd = m.handleMsg(keyPress(k))
		if cmd == nil {
			t.Fatalf("key %q: expected save command", k)
		}
		if msg := cmd().(prefsSavedMsg); msg.err != nil {
			t.Fatalf("key %q: save: %v", k, msg.err)
		}
	}

	got, err := store.Load(prefs.Settings{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Tuner || got.Ramp != "grayscale" || got.Sensitivity != 1.25 {
		t.Fatalf("unexpected saved settings: %+v", got)
	}
}

func TestViewShowsFrameAndStatus(t *testing.T) {
	m := testModel(t, Options{Audio: newFakeAudio(440), Metadata: player.Metadata{Title: "Song", Artist: "Band"}})
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 40, Height: 30})
	m, _ = m.handleMsg(frameMsg(time.Now()))

	view := m.View()
	for _, want := range []string{"cymascope", "Band - Song", "peak 440.0 Hz A4", "16 modes", "rainbow"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, view)
		}
	}
	if lines := strings.Count(view, "\n"); lines > 30 {
		t.Fatalf("view has %d lines, taller than the window", lines)
	}
}

func TestWindowTitleFollowsPause(t *testing.T) {
	a := newFakeAudio(440)
	m := testModel(t, Options{Audio: a, Metadata: player.Metadata{Title: "Song"}})
	if got := m.windowTitle(); got != "▶ Song - cymascope" {
		t.Fatalf("unexpected title %q", got)
	}
	a.paused = true
	if got := m.windowTitle(); got != "⏸ Song - cymascope" {
		t.Fatalf("unexpected title %q", got)
	}
	m.audio = nil
	if got := m.windowTitle(); got != "cymascope" {
		t.Fatalf("unexpected title %q", got)
	}
}
