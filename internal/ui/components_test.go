package ui

import (
	"testing"
	"time"

	"github.com/olivier-w/cymascope/internal/chladni"
	"github.com/olivier-w/cymascope/internal/tuner"
)

func TestRenderCentsNeedle(t *testing.T) {
	tests := []struct {
		cents float64
		width int
		want  string
	}{
		{0, 11, "─────●─────"},
		{50, 11, "─────┼────●"},
		{-80, 11, "●────┼─────"},
		{20, 12, "─────┼─●───"},
	}
	for _, tt := range tests {
		if got := renderCentsNeedle(tt.cents, tt.width); got != tt.want {
			t.Fatalf("needle(%v, %d) = %q, want %q", tt.cents, tt.width, got, tt.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents float64
		want  string
	}{
		{-0.4, "+0¢"},
		{12.6, "+13¢"},
		{-31, "-31¢"},
	}
	for _, tt := range tests {
		if got := formatCents(tt.cents); got != tt.want {
			t.Fatalf("formatCents(%v) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := renderProgressBar(5, 10, 12); got != "━━━━━─────" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := renderProgressBar(20, 10, 12); got != "━━━━━━━━━━" {
		t.Fatalf("expected a full bar past the end, got %q", got)
	}
	if got := renderProgressBar(3, 0, 12); got != "──────────" {
		t.Fatalf("expected an empty bar without a duration, got %q", got)
	}
}

func noteReading(hz float64) chladni.Reading {
	n, ok := tuner.FromFrequency(hz, 440)
	return chladni.Reading{Peak: chladni.Peak{Frequency: hz, Magnitude: 200}, Note: n, HasNote: ok}
}

func TestTunerReadoutSnapsThenEases(t *testing.T) {
	r := newTunerReadout(60)
	now := time.Now()

	r.update(noteReading(440), 440, now)
	if r.freq != 440 || r.note.String() != "A4" {
		t.Fatalf("expected snap to 440 A4, got %v %v", r.freq, r.note)
	}

	r.update(noteReading(445), 440, now.Add(time.Second/60))
	if !(r.freq > 440 && r.freq < 445) {
		t.Fatalf("expected readout between 440 and 445, got %v", r.freq)
	}

	r.update(noteReading(880), 440, now.Add(2*time.Second/60))
	if r.freq != 880 || r.note.String() != "A5" {
		t.Fatalf("expected octave jump to snap, got %v %v", r.freq, r.note)
	}

	if c, ok := r.cents(440); !ok || c != 0 {
		t.Fatalf("expected 0 cents at A5, got %v %v", c, ok)
	}
}

func TestTunerReadoutHoldsThroughGaps(t *testing.T) {
	r := newTunerReadout(60)
	now := time.Now()
	r.update(noteReading(440), 440, now)

	r.update(chladni.Reading{}, 440, now.Add(noteHold/2))
	if !r.hasNote {
		t.Fatal("expected note held through a short gap")
	}

	r.update(chladni.Reading{}, 440, now.Add(2*noteHold))
	if r.hasNote {
		t.Fatal("expected note cleared after the hold")
	}
	if _, ok := r.cents(440); ok {
		t.Fatal("expected no cents without a note")
	}
}

func TestRepeatModeCycle(t *testing.T) {
	m := RepeatOff
	for _, want := range []RepeatMode{RepeatOne, RepeatAll, RepeatOff} {
		m = m.Next()
		if m != want {
			t.Fatalf("expected %v, got %v", want, m)
		}
	}
}

func TestThemeCycleAndParse(t *testing.T) {
	if ParseTheme("bogus") != ThemeAuto || ParseTheme("light") != ThemeLight {
		t.Fatal("unexpected ParseTheme result")
	}
	if ThemeAuto.Next() != ThemeDark || ThemeDark.Next() != ThemeLight || ThemeLight.Next() != ThemeAuto {
		t.Fatal("unexpected theme cycle")
	}
}
