package chladni

import (
	"errors"
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RampName identifies a colour ramp.
type RampName string

const (
	RampRainbow   RampName = "rainbow"
	RampGrayscale RampName = "grayscale"
	RampHeatmap   RampName = "heatmap"
)

// RampNames lists the ramps in cycling order.
var RampNames = []RampName{RampRainbow, RampGrayscale, RampHeatmap}

// ErrUnknownRamp is returned when a ramp name is not recognised.
var ErrUnknownRamp = errors.New("chladni: unknown colour ramp")

// ParseRamp resolves a ramp name, ignoring case and surrounding space.
func ParseRamp(s string) (RampName, error) {
	name := RampName(strings.ToLower(strings.TrimSpace(s)))
	for _, n := range RampNames {
		if n == name {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRamp, s)
}

// Next returns the ramp after r in RampNames.
func (r RampName) Next() RampName {
	for i, n := range RampNames {
		if n == r {
			return RampNames[(i+1)%len(RampNames)]
		}
	}
	return RampRainbow
}

type rampStop struct {
	at  float64
	hex string
}

var rampStops = map[RampName][]rampStop{
	RampRainbow: {
		{0, "#FF0000"}, {0.17, "#FFFF00"}, {0.34, "#00FF00"}, {0.51, "#00FFFF"},
		{0.68, "#0000FF"}, {0.85, "#FF00FF"}, {1, "#FF0000"},
	},
	RampGrayscale: {{0, "#000000"}, {1, "#FFFFFF"}},
	RampHeatmap:   {{0, "#000000"}, {0.5, "#FF0000"}, {1, "#FFFF00"}},
}

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B uint8
}

const rampSize = 256

// Ramp maps an intensity in [0,1] to a colour through a 256-entry table.
type Ramp struct {
	name RampName
	lut  [rampSize]RGB
}

// NewRamp builds the lookup table for name.
func NewRamp(name RampName) (*Ramp, error) {
	stops, ok := rampStops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRamp, name)
	}

	colors := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s.hex)
		if err != nil {
			return nil, fmt.Errorf("ramp %s stop %d: %w", name, i, err)
		}
		colors[i] = c
	}

	r := &Ramp{name: name}
	for i := range rampSize {
		t := float64(i) / (rampSize - 1)
		c := colors[len(colors)-1]
		for j := 1; j < len(stops); j++ {
			if t <= stops[j].at {
				lo, hi := stops[j-1], stops[j]
				f := (t - lo.at) / (hi.at - lo.at)
				c = colors[j-1].BlendRgb(colors[j], f)
				break
			}
		}
		cr, cg, cb := c.Clamped().RGB255()
		r.lut[i] = RGB{R: cr, G: cg, B: cb}
	}
	return r, nil
}

// Name returns the ramp's name.
func (r *Ramp) Name() RampName { return r.name }

// Lookup returns the colour for intensity t, clamped to [0,1].
func (r *Ramp) Lookup(t float64) RGB {
	if math.IsNaN(t) {
		t = 0
	}
	idx := int(math.Round(clamp01(t) * (rampSize - 1)))
	return r.lut[idx]
}
