package chladni

import "github.com/olivier-w/cymascope/internal/spectrum"

// Command changes the driver's configuration between frames.
type Command interface {
	apply(d *Driver) error
}

// SetRamp replaces the colour ramp.
type SetRamp struct{ Name RampName }

func (c SetRamp) apply(d *Driver) error {
	r, err := NewRamp(c.Name)
	if err != nil {
		return err
	}
	d.ramp = r
	return nil
}

// SetSensitivity sets the gain applied before clamping intensities.
type SetSensitivity struct{ Gain float64 }

func (c SetSensitivity) apply(d *Driver) error {
	if err := checkPositive("sensitivity", c.Gain); err != nil {
		return err
	}
	d.sensitivity = c.Gain
	return nil
}

// SetScale sets the divisor projecting frequencies onto eigenvalues.
type SetScale struct{ Factor float64 }

func (c SetScale) apply(d *Driver) error {
	if err := checkPositive("scale", c.Factor); err != nil {
		return err
	}
	d.scale = c.Factor
	return nil
}

// SetReference sets the tuning reference (A4) in Hz.
type SetReference struct{ Hz float64 }

func (c SetReference) apply(d *Driver) error {
	if err := checkPositive("reference", c.Hz); err != nil {
		return err
	}
	d.reference = c.Hz
	return nil
}

// SetTestMode turns the synthetic spectrum on or off.
type SetTestMode struct{ On bool }

func (c SetTestMode) apply(d *Driver) error {
	d.testMode = c.On
	return nil
}

// SetTestPattern picks the synthetic spectrum shape.
type SetTestPattern struct{ Pattern spectrum.Pattern }

func (c SetTestPattern) apply(d *Driver) error {
	d.gen.SetPattern(c.Pattern)
	return nil
}

// AttachSource makes a live source the spectrum provider.
type AttachSource struct{ Source spectrum.Source }

func (c AttachSource) apply(d *Driver) error {
	d.source = c.Source
	return nil
}

// DetachSource stops live input and resets the smoothed weights.
type DetachSource struct{}

func (DetachSource) apply(d *Driver) error {
	d.Stop()
	return nil
}

// SetTextureUnits changes the mode budget. Fields are regenerated only when
// the number of usable modes changes, in which case the weights restart
// from zero.
type SetTextureUnits struct{ Units int }

func (c SetTextureUnits) apply(d *Driver) error {
	return d.rebuild(c.Units)
}

// Resize sets the frame dimensions in pixels.
type Resize struct{ W, H int }

func (c Resize) apply(d *Driver) error {
	if c.W == d.frame.W && c.H == d.frame.H {
		return nil
	}
	d.frame = NewFrame(c.W, c.H)
	return nil
}
