// Package player plays audio through the speakers and exposes what is being
// played as a spectrum source.
package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrNotSeekable is returned by SeekTo on sources without random access.
var ErrNotSeekable = errors.New("source is not seekable")

const defaultVolume = 0.8

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player plays one audio file and taps its output for analysis.
type Player struct {
	*Analysis

	decoder   audioDecoder
	counter   *countingReader
	otoCtx    *oto.Context
	otoPlayer *oto.Player

	duration    time.Duration
	bytesPerSec int64
	canSeek     bool
	volume      float64
	paused      bool

	done       chan struct{}
	doneClosed bool
	stopMon    chan struct{}
	cleanup    func()
	closed     bool
	mu         sync.Mutex
}

// New opens path, decodes it to the output format and starts playback.
func New(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	out, err := newResampler(dec)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ctx, err := outputContext()
	if err != nil {
		f.Close()
		return nil, err
	}

	p := &Player{
		Analysis:    newAnalysis(),
		decoder:     out,
		counter:     &countingReader{reader: out},
		otoCtx:      ctx,
		duration:    time.Duration(float64(out.Length()) / bytesPerSec * float64(time.Second)),
		bytesPerSec: bytesPerSec,
		canSeek:     true,
		volume:      defaultVolume,
		cleanup:     func() { f.Close() },
	}
	p.startLocked(true)
	return p, nil
}

// startLocked replaces the oto player so buffered audio is dropped, and
// restarts the end-of-track monitor. The done channel survives a restart
// unless it has already fired.
func (p *Player) startLocked(play bool) {
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		p.otoPlayer.Close()
		p.otoPlayer = nil
	}
	if p.stopMon != nil {
		close(p.stopMon)
	}
	if p.done == nil || p.doneClosed {
		p.done = make(chan struct{})
		p.doneClosed = false
	}
	p.stopMon = make(chan struct{})
	p.paused = !play

	if p.otoCtx == nil {
		return
	}
	p.otoPlayer = p.otoCtx.NewPlayer(p.tap(p.counter))
	p.otoPlayer.SetVolume(p.volume)
	if play {
		p.otoPlayer.Play()
	}
	go p.monitor(p.stopMon)
}

func (p *Player) monitor(stop chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		if p.checkFinished(stop) {
			return
		}
	}
}

// checkFinished closes done once the decoder is drained. A monitor whose
// stop channel has been closed no longer owns done and reports true.
func (p *Player) checkFinished(stop chan struct{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-stop:
		return true
	default:
	}
	if p.paused || p.counter.Pos() < p.decoder.Length() {
		return false
	}
	p.closeDoneLocked()
	return true
}

func (p *Player) closeDoneLocked() {
	if p.done != nil && !p.doneClosed {
		close(p.done)
		p.doneClosed = true
	}
}

// Done returns a channel that closes when playback reaches the end or the
// player is closed.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks to the beginning and resumes playback. Once Done has fired
// it must be re-fetched afterwards.
func (p *Player) Restart() error {
	return p.SeekTo(0, true)
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.resumeLocked()
	} else {
		p.pauseLocked()
	}
}

// Pause stops playback without discarding the position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseLocked()
}

func (p *Player) pauseLocked() {
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	p.paused = true
}

func (p *Player) resumeLocked() {
	if p.otoPlayer != nil {
		p.otoPlayer.Play()
	}
	p.paused = false
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the playback position. It runs slightly ahead of what is
// audible by the size of oto's buffer.
func (p *Player) Position() time.Duration {
	if p.bytesPerSec == 0 {
		return 0
	}
	secs := float64(p.counter.Pos()) / float64(p.bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by delta from the current position.
func (p *Player) Seek(delta time.Duration) error {
	return p.SeekTo(p.Position()+delta, !p.Paused())
}

// SeekTo jumps to target, clamped to the track, and plays on if resume is
// set.
func (p *Player) SeekTo(target time.Duration, resume bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.canSeek {
		return ErrNotSeekable
	}
	pos := clampSeekByteOffset(target, p.bytesPerSec, p.decoder.Length(), outputFrame)
	if _, err := p.decoder.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to %v: %w", target, err)
	}
	p.counter.SetPos(pos)
	if p.Analysis != nil {
		p.reset()
	}
	p.startLocked(resume)
	return nil
}

// clampSeekByteOffset converts target to a byte offset within [0, total],
// aligned down to a frame boundary.
func clampSeekByteOffset(target time.Duration, bytesPerSec, total, frameSize int64) int64 {
	pos := int64(target.Seconds() * float64(bytesPerSec))
	pos = max(0, min(pos, total))
	return pos - pos%frameSize
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = max(0, min(v, 1))
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// Close stops playback and releases the file.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		p.otoPlayer.Close()
	}
	if p.stopMon != nil {
		close(p.stopMon)
	}
	p.closeDoneLocked()
	if p.cleanup != nil {
		p.cleanup()
	}
}
