// Package spectrum produces the fixed-size magnitude snapshots the
// visualizer consumes each frame, either from tapped PCM audio or from a
// synthetic generator.
package spectrum

// FullScale is the magnitude of a saturated bin.
const FullScale = 255

// Bins is the number of magnitude samples in a snapshot.
const Bins = FFTSize / 2

// Spectrum is one frame of byte-scaled magnitudes, lowest frequency first.
// Bin i covers i*(sampleRate/2)/len(s) Hz.
type Spectrum []uint8

// New returns a zeroed spectrum of the standard length.
func New() Spectrum {
	return make(Spectrum, Bins)
}

// Source delivers the latest available spectrum without blocking.
type Source interface {
	// Latest copies the most recent snapshot into dst. It reports false when
	// no audio has arrived yet.
	Latest(dst Spectrum) bool
	SampleRate() float64
}
