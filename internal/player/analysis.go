package player

import (
	"io"
	"sync"

	"github.com/olivier-w/cymascope/internal/spectrum"
)

// ringWindows is how many analysis windows of PCM the tap retains.
const ringWindows = 4

// Analysis taps the PCM stream on its way to the speakers and turns the most
// recent window into a spectrum on demand. It implements spectrum.Source.
type Analysis struct {
	ring *spectrum.RingBuffer

	mu       sync.Mutex
	analyser *spectrum.Analyser
	window   []float64
}

func newAnalysis() *Analysis {
	return &Analysis{
		ring:     spectrum.NewRingBuffer(spectrum.FFTSize * outputFrame * ringWindows),
		analyser: spectrum.NewAnalyser(),
		window:   make([]float64, spectrum.FFTSize),
	}
}

// tap returns a reader that copies everything read from r into the ring.
func (a *Analysis) tap(r io.Reader) io.Reader {
	return &tapReader{src: r, ring: a.ring}
}

// Latest analyses the newest window of output PCM. It reports false until a
// full window has been played.
func (a *Analysis) Latest(dst spectrum.Spectrum) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.ring.Mono(a.window, outputChannels) {
		return false
	}
	a.analyser.Process(a.window, dst)
	return true
}

// SampleRate returns the rate of the tapped stream.
func (a *Analysis) SampleRate() float64 { return OutputRate }

// reset drops buffered PCM and the analyser's smoothing history, used when
// playback jumps.
func (a *Analysis) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ring.Clear()
	a.analyser.Reset()
}

type tapReader struct {
	src  io.Reader
	ring *spectrum.RingBuffer
}

func (t *tapReader) Read(p []byte) (int, error) {
	n, err := t.src.Read(p)
	if n > 0 {
		t.ring.Write(p[:n])
	}
	return n, err
}
