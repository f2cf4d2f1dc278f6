package chladni

import (
	"math"

	"github.com/olivier-w/cymascope/internal/spectrum"
)

// Peak is the loudest bin of a spectrum.
type Peak struct {
	Frequency float64
	Magnitude float64
}

// MapSpectrum accumulates the normalized magnitude of every bin into the
// weight of the mode whose eigenvalue lies closest to frequency/scale.
// weights is overwritten and must have len(modes) entries. Ties between
// equally close modes go to the earlier one in modes. The returned Peak is
// the first bin holding the largest magnitude.
func MapSpectrum(weights []float64, s spectrum.Spectrum, sampleRate, scale float64, modes []Mode) Peak {
	clear(weights)

	var peak Peak
	if len(s) == 0 || len(modes) == 0 {
		return peak
	}

	binWidth := (sampleRate / 2) / float64(len(s))
	for i, amp := range s {
		if amp == 0 {
			continue
		}
		frequency := float64(i) * binWidth
		if float64(amp) > peak.Magnitude {
			peak = Peak{Frequency: frequency, Magnitude: float64(amp)}
		}

		target := frequency / scale
		closest := 0
		best := math.Abs(modes[0].Eigenvalue - target)
		for j := 1; j < len(modes); j++ {
			if d := math.Abs(modes[j].Eigenvalue - target); d < best {
				best = d
				closest = j
			}
		}
		weights[closest] += float64(amp) / spectrum.FullScale
	}
	return peak
}
