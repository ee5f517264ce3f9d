// Package rain drops random impulses on a wave grid at a fixed interval.
package rain

import (
	"math/rand"
	"time"
)

// Disturber is the part of waves.Grid that rain writes to.
type Disturber interface {
	Disturb(i, j int, magnitude float32) error
	RowCount() int
	ColumnCount() int
}

// Config describes the droplets.
type Config struct {
	Interval     time.Duration
	MinMagnitude float32
	MaxMagnitude float32
	// Margin keeps droplets this many cells from the border. It is raised
	// to 2 when smaller since a droplet also touches its neighbours.
	Margin int
}

// Rain fires one droplet every Interval of accumulated time.
type Rain struct {
	cfg     Config
	rng     *rand.Rand
	elapsed float32
	drops   uint64
}

// New returns a Rain drawing positions and magnitudes from rng.
func New(cfg Config, rng *rand.Rand) *Rain {
	if cfg.Margin < 2 {
		cfg.Margin = 2
	}
	if cfg.MaxMagnitude < cfg.MinMagnitude {
		cfg.MinMagnitude, cfg.MaxMagnitude = cfg.MaxMagnitude, cfg.MinMagnitude
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Rain{cfg: cfg, rng: rng}
}

// Tick advances the rain clock by dt seconds and drops one droplet for every
// full interval that elapsed. It returns how many droplets fell.
func (r *Rain) Tick(dt float32, grid Disturber) (int, error) {
	interval := float32(r.cfg.Interval.Seconds())
	if interval <= 0 || dt <= 0 {
		return 0, nil
	}
	r.elapsed += dt
	fired := 0
	for r.elapsed >= interval {
		r.elapsed -= interval
		ok, err := r.Drop(grid)
		if err != nil {
			return fired, err
		}
		if ok {
			fired++
		}
	}
	return fired, nil
}

// Drop places a single random droplet. It reports false without touching the
// grid when the grid is too small to fit the margin.
func (r *Rain) Drop(grid Disturber) (bool, error) {
	lo, rowHi, colHi, ok := r.bounds(grid)
	if !ok {
		return false, nil
	}
	i := lo + r.rng.Intn(rowHi-lo+1)
	j := lo + r.rng.Intn(colHi-lo+1)
	mag := r.cfg.MinMagnitude + r.rng.Float32()*(r.cfg.MaxMagnitude-r.cfg.MinMagnitude)
	if err := grid.Disturb(i, j, mag); err != nil {
		return false, err
	}
	r.drops++
	return true, nil
}

// bounds returns the inclusive index range droplets may hit. The upper
// bounds never exceed rows-3 / cols-3, the last cells Disturb accepts.
func (r *Rain) bounds(grid Disturber) (lo, rowHi, colHi int, ok bool) {
	lo = r.cfg.Margin
	rowHi = grid.RowCount() - 1 - r.cfg.Margin
	colHi = grid.ColumnCount() - 1 - r.cfg.Margin
	rowHi = min(rowHi, grid.RowCount()-3)
	colHi = min(colHi, grid.ColumnCount()-3)
	if rowHi < lo || colHi < lo {
		return 0, 0, 0, false
	}
	return lo, rowHi, colHi, true
}

// Drops reports how many droplets have fallen.
func (r *Rain) Drops() uint64 { return r.drops }
