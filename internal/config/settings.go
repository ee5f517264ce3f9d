// Package config loads wavesim settings from an optional JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

// ErrInvalid reports a settings value the simulation cannot run with.
var ErrInvalid = errors.New("config: invalid settings")

type Settings struct {
	Grid   GridSettings   `json:"grid"`
	Rain   RainSettings   `json:"rain"`
	Viewer ViewerSettings `json:"viewer"`
	Server ServerSettings `json:"server"`
	Solver SolverSettings `json:"solver"`
}

// GridSettings mirror the arguments of waves.Create.
type GridSettings struct {
	Rows        int     `json:"rows"`
	Cols        int     `json:"cols"`
	SpatialStep float32 `json:"spatialStep"`
	TimeStep    float32 `json:"timeStep"`
	Speed       float32 `json:"speed"`
	Damping     float32 `json:"damping"`
}

type RainSettings struct {
	Enabled      bool    `json:"enabled"`
	IntervalMs   int     `json:"intervalMs"`
	MinMagnitude float32 `json:"minMagnitude"`
	MaxMagnitude float32 `json:"maxMagnitude"`
	Margin       int     `json:"margin"`
	Seed         int64   `json:"seed"`
}

type ViewerSettings struct {
	Scale       int     `json:"scale"`
	Title       string  `json:"title"`
	Audio       bool    `json:"audio"`
	Debug       bool    `json:"debug"`
	HeightScale float32 `json:"heightScale"`
}

type ServerSettings struct {
	Addr             string `json:"addr"`
	UpdateIntervalMs int    `json:"updateIntervalMs"`
}

type SolverSettings struct {
	Workers      int  `json:"workers"`
	PreferOpenCL bool `json:"preferOpenCL"`
}

// Default returns the settings of the lake demo: a 128×128 grid one unit
// apart, stepping every 30ms with droplets every quarter second.
func Default() Settings {
	return Settings{
		Grid: GridSettings{
			Rows:        128,
			Cols:        128,
			SpatialStep: 1.0,
			TimeStep:    0.03,
			Speed:       4.0,
			Damping:     0.2,
		},
		Rain: RainSettings{
			Enabled:      true,
			IntervalMs:   250,
			MinMagnitude: 0.2,
			MaxMagnitude: 0.5,
			Margin:       4,
		},
		Viewer: ViewerSettings{
			Scale:       4,
			Title:       "wavesim",
			HeightScale: 1.0,
		},
		Server: ServerSettings{
			Addr:             ":8080",
			UpdateIntervalMs: 33,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error; the
// defaults are returned as they are. An empty path skips the file.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("no settings file found, using defaults", "path", path)
			return s, nil
		}
		return s, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return s, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("loaded settings", "path", path,
		"rows", s.Grid.Rows, "cols", s.Grid.Cols, "dt", s.Grid.TimeStep)
	return s, nil
}

// Validate checks the values the simulation depends on.
func (s Settings) Validate() error {
	g := s.Grid
	switch {
	case g.Rows < 3 || g.Cols < 3:
		return fmt.Errorf("%w: grid %dx%d is smaller than 3x3", ErrInvalid, g.Rows, g.Cols)
	case !(g.SpatialStep > 0):
		return fmt.Errorf("%w: spatialStep must be positive", ErrInvalid)
	case !(g.TimeStep > 0):
		return fmt.Errorf("%w: timeStep must be positive", ErrInvalid)
	case g.Damping < 0:
		return fmt.Errorf("%w: damping must not be negative", ErrInvalid)
	}
	r := s.Rain
	if r.Enabled {
		switch {
		case r.IntervalMs <= 0:
			return fmt.Errorf("%w: rain intervalMs must be positive", ErrInvalid)
		case r.MinMagnitude > r.MaxMagnitude:
			return fmt.Errorf("%w: rain minMagnitude %v above maxMagnitude %v", ErrInvalid, r.MinMagnitude, r.MaxMagnitude)
		case r.Margin < 0:
			return fmt.Errorf("%w: rain margin must not be negative", ErrInvalid)
		}
	}
	if s.Viewer.Scale < 1 {
		return fmt.Errorf("%w: viewer scale must be at least 1", ErrInvalid)
	}
	if s.Server.UpdateIntervalMs <= 0 {
		return fmt.Errorf("%w: server updateIntervalMs must be positive", ErrInvalid)
	}
	return nil
}

// Interval returns the droplet interval as a duration.
func (r RainSettings) Interval() time.Duration {
	return time.Duration(r.IntervalMs) * time.Millisecond
}

// UpdateInterval returns the broadcast period as a duration.
func (s ServerSettings) UpdateInterval() time.Duration {
	return time.Duration(s.UpdateIntervalMs) * time.Millisecond
}
