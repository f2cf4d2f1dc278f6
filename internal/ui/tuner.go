package ui

import (
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/olivier-w/cymascope/internal/chladni"
	"github.com/olivier-w/cymascope/internal/tuner"
)

// noteHold keeps the last note on screen through short gaps.
const noteHold = 750 * time.Millisecond

// tunerReadout eases the displayed frequency toward each new peak so the
// cents needle does not jitter between adjacent FFT bins.
type tunerReadout struct {
	spring   harmonica.Spring
	freq     float64
	freqVel  float64
	note     tuner.Note
	hasNote  bool
	lastSeen time.Time
}

func newTunerReadout(fps int) tunerReadout {
	return tunerReadout{spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 6.0, 0.5)}
}

func (t *tunerReadout) update(r chladni.Reading, ref float64, now time.Time) {
	if r.HasNote {
		target := r.Peak.Frequency
		// Jumps of more than a whole tone snap instead of gliding.
		if !t.hasNote || target > t.freq*1.12 || target < t.freq/1.12 {
			t.freq, t.freqVel = target, 0
		} else {
			t.freq, t.freqVel = t.spring.Update(t.freq, t.freqVel, target)
		}
		t.hasNote = true
		t.lastSeen = now
	} else if t.hasNote && now.Sub(t.lastSeen) > noteHold {
		t.hasNote = false
		t.freq, t.freqVel = 0, 0
	}

	if t.hasNote {
		if n, ok := tuner.FromFrequency(t.freq, ref); ok {
			t.note = n
		}
	}
}

func (t *tunerReadout) cents(ref float64) (float64, bool) {
	if !t.hasNote {
		return 0, false
	}
	return tuner.Cents(t.freq, ref)
}

func (t *tunerReadout) reset() {
	t.hasNote = false
	t.freq, t.freqVel = 0, 0
}
