package waves

// Option configures a Grid during Create.
//
// Example:
//
//	// Four row workers on the CPU
//	g, err := waves.Create(128, 128, 1, 0.03, 4, 0.2, waves.WithWorkers(4))
type Option func(*gridOptions)

type gridOptions struct {
	workers int
	solver  HeightSolver
}

// WithWorkers sets how many goroutines share the per-row work of a step.
// Zero or a negative value selects GOMAXPROCS. One runs every phase inline
// on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *gridOptions) {
		o.workers = n
	}
}

// WithHeightSolver replaces the built-in CPU height update. Normals and
// tangents are still recomputed on the CPU worker pool.
func WithHeightSolver(s HeightSolver) Option {
	return func(o *gridOptions) {
		o.solver = s
	}
}
