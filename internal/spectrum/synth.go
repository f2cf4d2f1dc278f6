package spectrum

import (
	"math"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Pattern selects a synthetic test spectrum.
type Pattern int

const (
	// PatternSweep is a travelling sine ripple across the bins.
	PatternSweep Pattern = iota
	// PatternDrift is slowly evolving simplex noise.
	PatternDrift
)

// Next cycles to the next pattern.
func (p Pattern) Next() Pattern {
	switch p {
	case PatternSweep:
		return PatternDrift
	default:
		return PatternSweep
	}
}

// String returns the name of the pattern.
func (p Pattern) String() string {
	switch p {
	case PatternDrift:
		return "drift"
	default:
		return "sweep"
	}
}

// ParsePattern resolves a pattern by name.
func ParsePattern(s string) (Pattern, bool) {
	switch s {
	case "sweep":
		return PatternSweep, true
	case "drift":
		return PatternDrift, true
	}
	return PatternSweep, false
}

// Generator synthesizes spectra from the wall clock so the visualizer can
// run without audio.
type Generator struct {
	pattern Pattern
	noise   opensimplex.Noise
}

// NewGenerator creates a generator; seed only affects PatternDrift.
func NewGenerator(pattern Pattern, seed int64) *Generator {
	return &Generator{pattern: pattern, noise: opensimplex.NewNormalized(seed)}
}

// Pattern returns the active pattern.
func (g *Generator) Pattern() Pattern { return g.pattern }

// SetPattern switches the active pattern.
func (g *Generator) SetPattern(p Pattern) { g.pattern = p }

// Fill writes the spectrum for instant now into dst.
func (g *Generator) Fill(dst Spectrum, now time.Time) {
	t := float64(now.UnixNano()) / float64(time.Second)
	switch g.pattern {
	case PatternDrift:
		Drift(dst, g.noise, t)
	default:
		Sweep(dst, t)
	}
}

// Sweep fills dst with sin(i*0.2 + t*3)*127 + 128, t in seconds.
func Sweep(dst Spectrum, t float64) {
	phase := math.Mod(t*3, 2*math.Pi)
	for i := range dst {
		dst[i] = uint8(math.Sin(float64(i)*0.2+phase)*127 + 128)
	}
}

// Drift fills dst with simplex noise that decays towards the high bins.
func Drift(dst Spectrum, noise opensimplex.Noise, t float64) {
	n := float64(len(dst))
	for i := range dst {
		v := noise.Eval2(float64(i)*0.02, t*0.5)
		tilt := 1 - 0.7*float64(i)/n
		dst[i] = uint8(math.Round(v * tilt * FullScale))
	}
}
