// Command cymascope renders music as vibrating-plate patterns in the
// terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/cymascope/internal/chladni"
	"github.com/olivier-w/cymascope/internal/prefs"
	"github.com/olivier-w/cymascope/internal/spectrum"
	"github.com/olivier-w/cymascope/internal/tuner"
	"github.com/olivier-w/cymascope/internal/ui"
)

type config struct {
	fps         int
	units       int
	field       int
	alpha       float64
	scale       float64
	sensitivity float64
	reference   float64
	ramp        string
	test        bool
	prefsPath   string
	logPath     string
	args        []string

	// set records the flags given on the command line.
	set map[string]bool
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("cymascope", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: cymascope [flags] [file]\n\n")
		fs.PrintDefaults()
	}
	fs.IntVar(&cfg.fps, "fps", envIntOrDefault("CYMASCOPE_FPS", ui.DefaultFPS), "frames per second")
	fs.IntVar(&cfg.units, "units", chladni.DefaultTextureUnits, "texture unit budget; one unit is reserved")
	fs.IntVar(&cfg.field, "field", chladni.DefaultFieldSize, "mode field resolution in pixels")
	fs.Float64Var(&cfg.alpha, "alpha", chladni.DefaultAlpha, "weight smoothing factor in (0,1)")
	fs.Float64Var(&cfg.scale, "scale", chladni.DefaultScale, "frequency-to-eigenvalue divisor")
	fs.Float64Var(&cfg.sensitivity, "sensitivity", chladni.DefaultSensitivity, "intensity gain")
	fs.Float64Var(&cfg.reference, "ref", tuner.DefaultReference, "tuning reference for A4 in Hz")
	fs.StringVar(&cfg.ramp, "ramp", string(chladni.RampRainbow), "colour ramp: rainbow, grayscale or heatmap")
	fs.BoolVar(&cfg.test, "test", false, "start with the synthetic test spectrum")
	fs.StringVar(&cfg.prefsPath, "prefs", envOrDefault("CYMASCOPE_PREFS", ""), "settings database (\"off\" disables)")
	fs.StringVar(&cfg.logPath, "log", envOrDefault("CYMASCOPE_LOG", ""), "log file")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg.args = fs.Args()
	cfg.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg, nil
}

// overlay fills settings the user did not pass as flags from saved
// preferences.
func (c *config) overlay(st prefs.Settings) {
	if st.Ramp != "" && !c.set["ramp"] {
		if _, err := chladni.ParseRamp(st.Ramp); err == nil {
			c.ramp = st.Ramp
		} else {
			slog.Warn("ignoring saved ramp", "error", err)
		}
	}
	if st.Sensitivity > 0 && !c.set["sensitivity"] {
		c.sensitivity = st.Sensitivity
	}
	if st.Scale > 0 && !c.set["scale"] {
		c.scale = st.Scale
	}
	if st.Reference > 0 && !c.set["ref"] {
		c.reference = st.Reference
	}
}

func (c config) driverConfig(st prefs.Settings, log *slog.Logger) (chladni.Config, error) {
	ramp, err := chladni.ParseRamp(c.ramp)
	if err != nil {
		return chladni.Config{}, err
	}
	pattern, _ := spectrum.ParsePattern(st.TestPattern)

	dc := chladni.DefaultConfig()
	dc.TextureUnits = c.units
	dc.FieldSize = c.field
	dc.Alpha = c.alpha
	dc.Sensitivity = c.sensitivity
	dc.Scale = c.scale
	dc.Reference = c.reference
	dc.Ramp = ramp
	dc.TestMode = c.test
	dc.TestPattern = pattern
	dc.Workers = runtime.GOMAXPROCS(0)
	dc.Logger = log
	return dc, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger, closeLog, err := setupLogging(cfg.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(logger)

	store := openPrefs(cfg.prefsPath)
	if store != nil {
		defer store.Close()
	}
	var saved prefs.Settings
	if store != nil {
		saved, err = store.Load(prefs.Settings{})
		if err != nil {
			slog.Warn("loading preferences", "error", err)
		}
	}
	cfg.overlay(saved)

	dc, err := cfg.driverConfig(saved, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	driver, err := chladni.NewDriver(dc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	opts := ui.Options{
		Driver:    driver,
		FPS:       cfg.fps,
		Logger:    logger,
		Prefs:     store,
		Theme:     ui.ParseTheme(saved.Theme),
		ShowTuner: saved.Tuner,
	}

	var model tea.Model
	if len(cfg.args) > 0 {
		m, err := buildPlaybackModel(cfg.args[0], opts)
		if err != nil {
			slog.Error("cannot play", "path", cfg.args[0], "error", err)
			opts.Notice = err.Error()
			m = ui.New(opts)
		}
		model = m
	} else {
		model = newStartupModel(".", func(sel ui.BrowserSelectedMsg) (ui.Model, error) {
			if sel.TestSignal {
				return buildTestSignalModel(opts, driver.Reference()), nil
			}
			return buildPlaybackModel(sel.Path, opts)
		})
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// setupLogging sends structured logs to path, or nowhere when path is
// empty; the terminal belongs to the UI.
func setupLogging(path string) (*slog.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logger, closeFn, nil
}

// openPrefs returns nil when preferences are disabled or unavailable.
func openPrefs(path string) *prefs.Store {
	if path == "off" {
		return nil
	}
	if path == "" {
		var err error
		path, err = prefs.DefaultPath()
		if err != nil {
			slog.Warn("no preferences directory", "error", err)
			return nil
		}
	}
	store, err := prefs.Open(path)
	if err != nil {
		slog.Warn("opening preferences", "path", path, "error", err)
		return nil
	}
	return store
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
