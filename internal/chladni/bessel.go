// Package chladni maps audio spectra onto circular-membrane vibration
// patterns: it builds the eigenmode fields, turns spectra into per-mode
// weights, smooths them over time and composites the weighted fields into
// coloured frames.
package chladni

import "math"

const (
	// besselTolerance stops the series once a term falls to this magnitude.
	besselTolerance = 1e-9

	// besselMaxTerms bounds the series for arguments far outside the
	// range the mode fields produce (k*r <= ~17).
	besselMaxTerms = 200
)

// BesselJ evaluates the Bessel function of the first kind J_n(x) for a
// non-negative integer order using its power series:
//
//	J_n(x) = Σ (-1)^k / (k! (n+k)!) · (x/2)^(n+2k)
//
// Each term is derived from the previous one, starting at (x/2)^n / n!.
// Negative orders return NaN.
func BesselJ(n int, x float64) float64 {
	if n < 0 {
		return math.NaN()
	}

	half := x / 2
	term := 1.0
	for i := 1; i <= n; i++ {
		term *= half / float64(i)
	}

	sum := term
	x2 := x * x
	for k := 1; math.Abs(term) > besselTolerance && k < besselMaxTerms; k++ {
		term *= -x2 / (4 * float64(k) * float64(n+k))
		sum += term
	}
	return sum
}
