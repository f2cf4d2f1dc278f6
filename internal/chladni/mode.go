package chladni

import (
	"errors"
	"fmt"
)

// Mode is one vibration eigenmode of a clamped circular membrane.
// Eigenvalue is the Radial-th root of J_Angular, so the field vanishes on
// the rim.
type Mode struct {
	Angular    int
	Radial     int
	Eigenvalue float64
}

func (m Mode) String() string {
	return fmt.Sprintf("(%d,%d) k=%.4f", m.Angular, m.Radial, m.Eigenvalue)
}

// Catalog lists every mode the visualizer knows, in weight-vector order.
var Catalog = [...]Mode{
	{Angular: 0, Radial: 1, Eigenvalue: 2.4048}, {Angular: 0, Radial: 2, Eigenvalue: 5.5201},
	{Angular: 0, Radial: 3, Eigenvalue: 8.6537}, {Angular: 0, Radial: 4, Eigenvalue: 11.7915},
	{Angular: 1, Radial: 1, Eigenvalue: 3.8317}, {Angular: 1, Radial: 2, Eigenvalue: 7.0156},
	{Angular: 1, Radial: 3, Eigenvalue: 10.1735}, {Angular: 1, Radial: 4, Eigenvalue: 13.3237},
	{Angular: 2, Radial: 1, Eigenvalue: 5.1356}, {Angular: 2, Radial: 2, Eigenvalue: 8.4172},
	{Angular: 2, Radial: 3, Eigenvalue: 11.6198}, {Angular: 2, Radial: 4, Eigenvalue: 14.7960},
	{Angular: 3, Radial: 1, Eigenvalue: 6.3802}, {Angular: 3, Radial: 2, Eigenvalue: 9.7610},
	{Angular: 3, Radial: 3, Eigenvalue: 13.0152}, {Angular: 3, Radial: 4, Eigenvalue: 16.2235},
}

// ErrTextureBudget is returned when the budget leaves no room for a single
// mode next to the colour ramp.
var ErrTextureBudget = errors.New("chladni: texture budget too small")

// EffectiveModes returns the leading catalog modes that fit in textureUnits,
// one unit being reserved for the colour ramp. truncated reports whether
// the catalog had to be cut.
func EffectiveModes(textureUnits int) (modes []Mode, truncated bool, err error) {
	count := min(len(Catalog), textureUnits-1)
	if count < 1 {
		return nil, false, fmt.Errorf("%w: %d units", ErrTextureBudget, textureUnits)
	}
	modes = make([]Mode, count)
	copy(modes, Catalog[:count])
	return modes, count < len(Catalog), nil
}
