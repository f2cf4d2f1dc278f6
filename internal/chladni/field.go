package chladni

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel marks cells outside the membrane. It decodes to a signed
// contribution of exactly zero.
const Sentinel = 0.5

// ErrFieldSize is returned for grids too small to hold a disk.
var ErrFieldSize = errors.New("chladni: field size must be at least 2")

// Field is the rasterized displacement of one mode over the unit disk,
// stored normalized to [0,1]. It is never modified after generation.
type Field struct {
	Mode   Mode
	Size   int
	Values []float64 // row-major, Size*Size
}

// At returns the normalized value of cell (x, y).
func (f *Field) At(x, y int) float64 {
	return f.Values[y*f.Size+x]
}

// polar maps a cell to coordinates relative to the grid centre, scaled so
// the inscribed disk has radius 1.
func polar(x, y, size int) (r, theta float64) {
	center := float64(size) / 2
	dx := (float64(x) - center) / center
	dy := (float64(y) - center) / center
	return math.Sqrt(dx*dx + dy*dy), math.Atan2(dy, dx)
}

// GenerateField rasterizes u(r,θ) = J_n(k·r)·cos(n·θ) for mode on a
// size×size grid.
func GenerateField(mode Mode, size int) (*Field, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrFieldSize, size)
	}

	values := make([]float64, size*size)
	n := float64(mode.Angular)
	for y := range size {
		for x := range size {
			idx := y*size + x
			r, theta := polar(x, y, size)
			if r > 1 {
				values[idx] = Sentinel
				continue
			}
			u := BesselJ(mode.Angular, mode.Eigenvalue*r) * math.Cos(n*theta)
			values[idx] = clamp01((u + 1) / 2)
		}
	}
	return &Field{Mode: mode, Size: size, Values: values}, nil
}

// Bank holds the active fields packed pixel-major as signed values, so one
// pixel's contributions from every mode are contiguous.
type Bank struct {
	modes  []Mode
	size   int
	signed []float64
}

// NewBank generates a field for every mode and keeps only the packed signed
// values. It is a one-shot setup step.
func NewBank(modes []Mode, size int) (*Bank, error) {
	if len(modes) == 0 {
		return nil, fmt.Errorf("%w: no modes", ErrTextureBudget)
	}

	n := len(modes)
	b := &Bank{
		modes:  append([]Mode(nil), modes...),
		size:   size,
		signed: make([]float64, size*size*n),
	}
	for i, m := range modes {
		f, err := GenerateField(m, size)
		if err != nil {
			return nil, fmt.Errorf("mode %d %v: %w", i, m, err)
		}
		for p, v := range f.Values {
			b.signed[p*n+i] = 2*v - 1
		}
	}
	return b, nil
}

// Modes returns the modes in weight order.
func (b *Bank) Modes() []Mode { return b.modes }

// Len returns the number of modes.
func (b *Bank) Len() int { return len(b.modes) }

// Size returns the side length of every field.
func (b *Bank) Size() int { return b.size }

// Pixel returns the signed contribution of every mode at cell p (row-major).
func (b *Bank) Pixel(p int) []float64 {
	n := len(b.modes)
	return b.signed[p*n : (p+1)*n]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
