package chladni

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/olivier-w/cymascope/internal/spectrum"
	"github.com/olivier-w/cymascope/internal/tuner"
)

// Defaults for a new Driver.
const (
	DefaultTextureUnits = 32
	DefaultFieldSize    = 256
	DefaultSampleRate   = 44100.0
	DefaultScale        = 100.0
	DefaultSensitivity  = 1.0
)

// ErrInvalidParameter is returned for gains and frequencies that are not
// positive finite numbers.
var ErrInvalidParameter = errors.New("chladni: invalid parameter")

// State tells whether a live source feeds the driver.
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Config holds the setup parameters of a Driver.
type Config struct {
	TextureUnits int
	FieldSize    int
	Alpha        float64
	SampleRate   float64 // assumed when no live source is attached
	Sensitivity  float64
	Scale        float64
	Reference    float64
	Ramp         RampName
	TestMode     bool
	TestPattern  spectrum.Pattern
	Workers      int
	Logger       *slog.Logger
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		TextureUnits: DefaultTextureUnits,
		FieldSize:    DefaultFieldSize,
		Alpha:        DefaultAlpha,
		SampleRate:   DefaultSampleRate,
		Sensitivity:  DefaultSensitivity,
		Scale:        DefaultScale,
		Reference:    tuner.DefaultReference,
		Ramp:         RampRainbow,
	}
}

// Reading is the outcome of one frame.
type Reading struct {
	Frame    *Frame // owned by the driver, valid until the next Tick
	Peak     Peak
	Note     tuner.Note
	HasNote  bool
	State    State
	Acquired bool // a spectrum was consumed this frame
}

// Driver owns all pipeline state and runs one frame per Tick. It is not
// safe for concurrent use; the host calls it from a single goroutine.
type Driver struct {
	log *slog.Logger

	textureUnits int
	fieldSize    int
	workers      int
	alpha        float64
	sampleRate   float64

	sensitivity float64
	scale       float64
	reference   float64

	modes      []Mode
	bank       *Bank
	compositor *Compositor
	ramp       *Ramp

	raw      []float64
	smoothed []float64
	buf      spectrum.Spectrum
	frame    *Frame

	source   spectrum.Source
	testMode bool
	gen      *spectrum.Generator

	last Reading
}

// NewDriver builds the mode bank and colour ramp. Any error here means the
// visualizer cannot run.
func NewDriver(cfg Config) (*Driver, error) {
	if !(cfg.Alpha > 0 && cfg.Alpha < 1) {
		return nil, fmt.Errorf("%w: smoothing alpha %v outside (0,1)", ErrInvalidParameter, cfg.Alpha)
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"sample rate", cfg.SampleRate},
		{"sensitivity", cfg.Sensitivity},
		{"scale", cfg.Scale},
		{"reference", cfg.Reference},
	} {
		if err := checkPositive(p.name, p.v); err != nil {
			return nil, err
		}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	ramp, err := NewRamp(cfg.Ramp)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		log:         log,
		fieldSize:   cfg.FieldSize,
		workers:     cfg.Workers,
		alpha:       cfg.Alpha,
		sampleRate:  cfg.SampleRate,
		sensitivity: cfg.Sensitivity,
		scale:       cfg.Scale,
		reference:   cfg.Reference,
		ramp:        ramp,
		buf:         spectrum.New(),
		frame:       NewFrame(0, 0),
		testMode:    cfg.TestMode,
		gen:         spectrum.NewGenerator(cfg.TestPattern, time.Now().UnixNano()),
	}
	if err := d.rebuild(cfg.TextureUnits); err != nil {
		return nil, err
	}
	return d, nil
}

// rebuild regenerates the bank when the effective mode count changes.
func (d *Driver) rebuild(textureUnits int) error {
	modes, truncated, err := EffectiveModes(textureUnits)
	if err != nil {
		return err
	}
	d.textureUnits = textureUnits
	if truncated {
		d.log.Warn("not enough texture units for every mode",
			"units", textureUnits, "modes", len(modes), "catalog", len(Catalog))
	}
	if d.bank != nil && len(modes) == d.bank.Len() {
		return nil
	}

	start := time.Now()
	bank, err := NewBank(modes, d.fieldSize)
	if err != nil {
		return fmt.Errorf("building mode fields: %w", err)
	}
	d.log.Info("mode fields ready",
		"modes", len(modes), "size", d.fieldSize, "elapsed", time.Since(start))

	d.modes = modes
	d.bank = bank
	d.compositor = NewCompositor(bank, d.workers)
	d.raw = make([]float64, len(modes))
	d.smoothed = make([]float64, len(modes))
	return nil
}

// Tick runs one frame: acquire a spectrum, map it to weights, smooth them
// and composite the frame.
func (d *Driver) Tick(now time.Time) Reading {
	r := Reading{Frame: d.frame, State: d.State()}

	if rate, ok := d.acquire(now); ok {
		r.Acquired = true
		r.Peak = MapSpectrum(d.raw, d.buf, rate, d.scale, d.modes)
		Smooth(d.smoothed, d.raw, d.alpha)
		if tuner.Audible(r.Peak.Magnitude) {
			r.Note, r.HasNote = tuner.FromFrequency(r.Peak.Frequency, d.reference)
		}
	}

	d.compositor.Render(d.frame, d.smoothed, d.ramp, d.sensitivity)
	d.last = r
	return r
}

func (d *Driver) acquire(now time.Time) (float64, bool) {
	if d.source != nil && d.source.Latest(d.buf) {
		return d.source.SampleRate(), true
	}
	if d.testMode {
		d.gen.Fill(d.buf, now)
		return d.sampleRate, true
	}
	return 0, false
}

// Stop detaches any live source and clears the smoothed weights.
func (d *Driver) Stop() {
	d.source = nil
	ResetWeights(d.smoothed)
}

// Apply executes a configuration command.
func (d *Driver) Apply(cmd Command) error {
	return cmd.apply(d)
}

// Last returns the reading of the most recent Tick.
func (d *Driver) Last() Reading { return d.last }

// State reports whether a live source is attached.
func (d *Driver) State() State {
	if d.source != nil {
		return StateActive
	}
	return StateIdle
}

func (d *Driver) Sensitivity() float64 { return d.sensitivity }
func (d *Driver) Scale() float64       { return d.scale }
func (d *Driver) Reference() float64   { return d.reference }
func (d *Driver) Ramp() RampName       { return d.ramp.Name() }
func (d *Driver) TestMode() bool       { return d.testMode }
func (d *Driver) TextureUnits() int    { return d.textureUnits }

// TestPattern returns the synthetic pattern used in test mode.
func (d *Driver) TestPattern() spectrum.Pattern { return d.gen.Pattern() }

// Modes returns the active modes.
func (d *Driver) Modes() []Mode { return d.modes }

// Weights returns a copy of the smoothed weight vector.
func (d *Driver) Weights() []float64 {
	return append([]float64(nil), d.smoothed...)
}

// Frame returns the current frame buffer.
func (d *Driver) Frame() *Frame { return d.frame }

func checkPositive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}
