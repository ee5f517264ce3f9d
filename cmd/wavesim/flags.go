package main

import (
	"flag"
	"fmt"
	"log/slog"

	"wavesim/internal/config"
)

// Command-line flags. Grid, solver and viewer flags override the settings
// file only when given explicitly.
var (
	// configPath names an optional JSON settings file.
	configPath = flag.String("config", "", "path to a JSON settings file (missing file uses defaults)")

	// modeFlag selects the front-end.
	modeFlag = flag.String("mode", "window", "front-end: window, term, serve or headless")

	rowsFlag    = flag.Int("rows", 0, "grid rows (overrides settings)")
	colsFlag    = flag.Int("cols", 0, "grid columns (overrides settings)")
	speedFlag   = flag.Float64("speed", 0, "wave speed (overrides settings)")
	dampingFlag = flag.Float64("damping", 0, "damping factor (overrides settings)")

	// workersFlag sets the row worker count; 0 means GOMAXPROCS.
	workersFlag = flag.Int("workers", 0, "row workers for the CPU solver (0 = GOMAXPROCS)")

	// openCLFlag asks for the OpenCL solver when the binary was built with it.
	openCLFlag = flag.Bool("opencl", false, "use the OpenCL height solver when available")

	rainFlag = flag.Bool("rain", true, "drop random droplets")
	seedFlag = flag.Int64("seed", 0, "droplet seed (0 = time based)")

	// enableAudioFlag streams the centre height as sound in window mode.
	enableAudioFlag = flag.Bool("enable-audio", false, "play the centre sample as audio (window mode)")

	// debugFlag enables the FPS and simulation overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation overlay")

	addrFlag  = flag.String("addr", "", "listen address for serve mode (overrides settings)")
	stepsFlag = flag.Int("steps", 1000, "simulation steps to run in headless mode")

	// exportFlag writes the final surface as an OBJ mesh in headless mode.
	exportFlag = flag.String("export", "", "write the final surface to this OBJ file (headless mode)")

	logLevelFlag   = flag.String("log-level", "info", "log level: debug, info, warn or error")
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")
)

// setFlags returns the names of the flags given on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags copies explicitly set flags over s and validates the result.
func applyFlags(s config.Settings, set map[string]bool) (config.Settings, error) {
	if set["rows"] {
		s.Grid.Rows = *rowsFlag
	}
	if set["cols"] {
		s.Grid.Cols = *colsFlag
	}
	if set["speed"] {
		s.Grid.Speed = float32(*speedFlag)
	}
	if set["damping"] {
		s.Grid.Damping = float32(*dampingFlag)
	}
	if set["workers"] {
		s.Solver.Workers = *workersFlag
	}
	if set["opencl"] {
		s.Solver.PreferOpenCL = *openCLFlag
	}
	if set["rain"] {
		s.Rain.Enabled = *rainFlag
	}
	if set["seed"] {
		s.Rain.Seed = *seedFlag
	}
	if set["enable-audio"] {
		s.Viewer.Audio = *enableAudioFlag
	}
	if set["debug"] {
		s.Viewer.Debug = *debugFlag
	}
	if set["addr"] {
		s.Server.Addr = *addrFlag
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}
