// Package app composes the wave grid with its drivers: the frame timer,
// the droplet rain and the speed control shared by every front-end.
package app

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"wavesim/internal/clock"
	"wavesim/internal/clsolver"
	"wavesim/internal/config"
	"wavesim/internal/rain"
	"wavesim/waves"
)

const (
	MinSpeed = 1
	MaxSpeed = 16
)

// App owns a grid and advances it. It has a single owner goroutine like the
// grid itself.
type App struct {
	settings config.Settings
	grid     *waves.Grid
	solver   *clsolver.Solver
	rain     *rain.Rain
	timer    *clock.Timer
	stats    clock.FrameStats
	speed    int
	log      *slog.Logger
}

// Option configures an App during New.
type Option func(*App)

// WithTimer replaces the wall-clock frame timer.
func WithTimer(t *clock.Timer) Option {
	return func(a *App) { a.timer = t }
}

// WithRand seeds the droplet positions.
func WithRand(r *rand.Rand) Option {
	return func(a *App) {
		if a.rain != nil {
			a.rain = rain.New(rainConfig(a.settings.Rain), r)
		}
	}
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

func rainConfig(r config.RainSettings) rain.Config {
	return rain.Config{
		Interval:     r.Interval(),
		MinMagnitude: r.MinMagnitude,
		MaxMagnitude: r.MaxMagnitude,
		Margin:       r.Margin,
	}
}

// New validates s and builds the grid it describes. When s asks for OpenCL
// and no device is usable the CPU solver is kept and a warning is logged.
func New(s config.Settings, opts ...Option) (*App, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	a := &App{
		settings: s,
		speed:    MinSpeed,
		log:      slog.Default(),
	}
	if s.Rain.Enabled {
		seed := s.Rain.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		a.rain = rain.New(rainConfig(s.Rain), rand.New(rand.NewSource(seed)))
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.timer == nil {
		a.timer = clock.NewTimer()
	}

	gridOpts := []waves.Option{waves.WithWorkers(s.Solver.Workers)}
	if s.Solver.PreferOpenCL {
		solver, err := clsolver.New()
		if err != nil {
			a.log.Warn("OpenCL solver unavailable, using CPU", "err", err)
		} else {
			a.log.Info("OpenCL solver enabled", "device", solver.DeviceName())
			a.solver = solver
			gridOpts = append(gridOpts, waves.WithHeightSolver(solver))
		}
	}

	g := s.Grid
	grid, err := waves.Create(g.Rows, g.Cols, g.SpatialStep, g.TimeStep, g.Speed, g.Damping, gridOpts...)
	if err != nil {
		a.closeSolver()
		return nil, fmt.Errorf("creating grid: %w", err)
	}
	a.grid = grid
	a.log.Info("wave grid ready",
		"rows", g.Rows, "cols", g.Cols, "workers", grid.Workers(),
		"courant", grid.CourantNumber(), "stable", grid.Stable())
	return a, nil
}

// Grid exposes the simulated grid for reading between frames.
func (a *App) Grid() *waves.Grid { return a.grid }

// Settings returns the settings the app was built from.
func (a *App) Settings() config.Settings { return a.settings }

// Frame ticks the timer and advances the simulation by the real time since
// the previous frame. Nothing advances while paused.
func (a *App) Frame() error {
	a.timer.Tick()
	if a.timer.Stopped() {
		return nil
	}
	a.stats.Frame(a.timer.TotalTime())
	return a.Advance(a.timer.DeltaTime())
}

// Advance moves the simulation forward by dt seconds of frame time, scaled
// by the speed multiplier. Each slice runs the rain before the grid update.
func (a *App) Advance(dt float32) error {
	for k := 0; k < a.speed; k++ {
		if a.rain != nil {
			if _, err := a.rain.Tick(dt, a.grid); err != nil {
				return fmt.Errorf("rain: %w", err)
			}
		}
		if _, err := a.grid.Update(dt); err != nil {
			return err
		}
	}
	return nil
}

// Disturb forwards a droplet to the grid.
func (a *App) Disturb(i, j int, magnitude float32) error {
	return a.grid.Disturb(i, j, magnitude)
}

// DropCentre drops an impulse as close to the centre as the grid allows.
func (a *App) DropCentre(magnitude float32) error {
	return a.grid.Disturb(a.grid.RowCount()/2, a.grid.ColumnCount()/2, magnitude)
}

// Reset flattens the grid.
func (a *App) Reset() {
	a.grid.Reset()
}

func (a *App) Pause()       { a.timer.Stop() }
func (a *App) Resume()      { a.timer.Start() }
func (a *App) Paused() bool { return a.timer.Stopped() }

// TogglePause flips between paused and running.
func (a *App) TogglePause() {
	if a.Paused() {
		a.Resume()
	} else {
		a.Pause()
	}
}

// Speed is the simulated-time multiplier.
func (a *App) Speed() int { return a.speed }

// AdjustSpeed changes the multiplier by delta, clamped to [MinSpeed, MaxSpeed].
func (a *App) AdjustSpeed(delta int) {
	a.speed += delta
	if a.speed < MinSpeed {
		a.speed = MinSpeed
	} else if a.speed > MaxSpeed {
		a.speed = MaxSpeed
	}
}

// Status summarises the simulation for overlays and logs.
type Status struct {
	FPS        float32
	MsPerFrame float32
	Steps      uint64
	Drops      uint64
	Speed      int
	Courant    float64
	Stable     bool
	Paused     bool
}

func (a *App) Status() Status {
	st := Status{
		FPS:        a.stats.FPS(),
		MsPerFrame: a.stats.MsPerFrame(),
		Steps:      a.grid.Steps(),
		Speed:      a.speed,
		Courant:    a.grid.CourantNumber(),
		Stable:     a.grid.Stable(),
		Paused:     a.Paused(),
	}
	if a.rain != nil {
		st.Drops = a.rain.Drops()
	}
	return st
}

func (st Status) String() string {
	state := "running"
	if st.Paused {
		state = "paused"
	}
	return fmt.Sprintf("FPS: %.1f (%.2f ms)\nSteps: %d  Drops: %d\nSpeed: %dx (+/-)\nCourant: %.3f  %s",
		st.FPS, st.MsPerFrame, st.Steps, st.Drops, st.Speed, st.Courant, state)
}

func (a *App) closeSolver() {
	if a.solver != nil {
		a.solver.Close()
		a.solver = nil
	}
}

// Close stops the grid workers and releases the OpenCL solver.
func (a *App) Close() {
	if a.grid != nil {
		a.grid.Close()
	}
	a.closeSolver()
}
