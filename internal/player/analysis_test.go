package player

import (
	"bytes"
	"io"
	"testing"

	"github.com/olivier-w/cymascope/internal/spectrum"
)

func TestTapCopiesIntoRing(t *testing.T) {
	a := newAnalysis()
	data := pcm16(1, 2, 3, 4)
	out, err := io.ReadAll(a.tap(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("tap altered the stream: %v", out)
	}
	if got := a.ring.Read(len(data)); !bytes.Equal(got, data) {
		t.Fatalf("ring holds %v, want %v", got, data)
	}
}

func TestLatestNeedsFullWindow(t *testing.T) {
	a := newAnalysis()
	dst := spectrum.New()
	if a.Latest(dst) {
		t.Fatal("expected no spectrum from an empty tap")
	}

	a.ring.Write(make([]byte, (spectrum.FFTSize-1)*outputFrame))
	if a.Latest(dst) {
		t.Fatal("expected no spectrum from a partial window")
	}
}

func TestLatestFindsToneBin(t *testing.T) {
	const bin = 64
	osc := &oscillator{freq: float64(bin) * OutputRate / spectrum.FFTSize, gain: DefaultToneGain}

	a := newAnalysis()
	buf := make([]byte, spectrum.FFTSize*outputFrame)
	if _, err := io.ReadFull(a.tap(osc), buf); err != nil {
		t.Fatalf("reading tone: %v", err)
	}

	dst := spectrum.New()
	if !a.Latest(dst) {
		t.Fatal("expected a spectrum after a full window")
	}
	peak := 0
	for i, v := range dst {
		if v > dst[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Fatalf("peak at bin %d, want %d", peak, bin)
	}
	if a.SampleRate() != OutputRate {
		t.Fatalf("SampleRate() = %v, want %d", a.SampleRate(), OutputRate)
	}

	a.reset()
	if a.Latest(dst) {
		t.Fatal("expected reset to drop buffered PCM")
	}
}
