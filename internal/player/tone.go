package player

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Test tone defaults.
const (
	DefaultToneFrequency = 440.0
	DefaultToneGain      = 0.1
)

// oscillator is an endless stereo sine in the output format.
type oscillator struct {
	mu    sync.Mutex
	freq  float64
	gain  float64
	phase float64
}

func (o *oscillator) Read(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	frames := len(p) / outputFrame
	step := 2 * math.Pi * o.freq / OutputRate
	for i := range frames {
		s := uint16(int16(math.Round(o.gain * math.Sin(o.phase) * 32767)))
		off := i * outputFrame
		binary.LittleEndian.PutUint16(p[off:], s)
		binary.LittleEndian.PutUint16(p[off+sampleBytes:], s)
		o.phase = math.Mod(o.phase+step, 2*math.Pi)
	}
	return frames * outputFrame, nil
}

func (o *oscillator) setFrequency(hz float64) {
	o.mu.Lock()
	o.freq = hz
	o.mu.Unlock()
}

// Tone plays a quiet sine wave, giving the visualizer a known input.
type Tone struct {
	*Analysis

	osc       *oscillator
	otoPlayer *oto.Player
	paused    bool
	closed    bool
	mu        sync.Mutex
}

// NewTone starts a sine at freq Hz and the given linear gain.
func NewTone(freq, gain float64) (*Tone, error) {
	ctx, err := outputContext()
	if err != nil {
		return nil, err
	}
	t := &Tone{
		Analysis: newAnalysis(),
		osc:      &oscillator{freq: freq, gain: gain},
	}
	t.otoPlayer = ctx.NewPlayer(t.tap(t.osc))
	t.otoPlayer.Play()
	return t, nil
}

// SetFrequency retunes the tone without a gap.
func (t *Tone) SetFrequency(hz float64) {
	t.osc.setFrequency(hz)
}

// TogglePause toggles between play and pause.
func (t *Tone) TogglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.paused {
		t.otoPlayer.Play()
	} else {
		t.otoPlayer.Pause()
	}
	t.paused = !t.paused
}

// Paused returns whether the tone is silenced.
func (t *Tone) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Close stops the tone.
func (t *Tone) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.otoPlayer.Pause()
	t.otoPlayer.Close()
}
