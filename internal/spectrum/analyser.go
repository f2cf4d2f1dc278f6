package spectrum

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFTSize is the analysis window length in samples.
	FFTSize = 2048

	defaultSmoothing   = 0.8
	defaultMinDecibels = -100.0
	defaultMaxDecibels = -30.0
)

// Analyser turns windows of mono PCM into byte-scaled magnitude spectra:
// Blackman window, real FFT, per-bin exponential smoothing over time, then a
// decibel range squeezed into 0..255.
type Analyser struct {
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64

	fft      *fourier.FFT
	window   []float64
	frame    []float64
	coeffs   []complex128
	smoothed []float64
}

// NewAnalyser creates an analyser for FFTSize-sample windows.
func NewAnalyser() *Analyser {
	window := make([]float64, FFTSize)
	for i := range window {
		p := 2 * math.Pi * float64(i) / float64(FFTSize)
		window[i] = 0.42 - 0.5*math.Cos(p) + 0.08*math.Cos(2*p)
	}
	return &Analyser{
		Smoothing:   defaultSmoothing,
		MinDecibels: defaultMinDecibels,
		MaxDecibels: defaultMaxDecibels,
		fft:         fourier.NewFFT(FFTSize),
		window:      window,
		frame:       make([]float64, FFTSize),
		coeffs:      make([]complex128, FFTSize/2+1),
		smoothed:    make([]float64, Bins),
	}
}

// Process analyses one window. samples must hold FFTSize values and dst
// Bins values; shorter inputs leave dst untouched.
func (a *Analyser) Process(samples []float64, dst Spectrum) {
	if len(samples) < FFTSize || len(dst) < Bins {
		return
	}

	for i := range FFTSize {
		a.frame[i] = samples[i] * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	span := a.MaxDecibels - a.MinDecibels
	if span <= 0 {
		span = 1
	}
	tau := a.Smoothing
	for k := range Bins {
		c := a.coeffs[k]
		mag := math.Hypot(real(c), imag(c)) / FFTSize
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*mag

		v := a.smoothed[k]
		if v <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(v)
		scaled := math.Floor(FullScale * (db - a.MinDecibels) / span)
		switch {
		case scaled < 0:
			dst[k] = 0
		case scaled > FullScale:
			dst[k] = FullScale
		default:
			dst[k] = uint8(scaled)
		}
	}
}

// Reset forgets the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smoothed)
}
