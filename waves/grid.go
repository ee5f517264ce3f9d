package waves

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	restNormal  = mgl32.Vec3{0, 1, 0}
	restTangent = mgl32.Vec3{1, 0, 0}
)

// Grid is a damped wave field sampled on rows×cols points of the XZ plane.
type Grid struct {
	rows, cols int

	spatialStep float32
	timeStep    float32
	speed       float32
	damping     float32
	k           Coefficients

	// xs holds the x coordinate of each column, zs the z coordinate of
	// each row. Both are fixed at construction.
	xs []float32
	zs []float32

	// prev and curr are the two height buffers of the recurrence.
	prev []float32
	curr []float32

	normals  []mgl32.Vec3
	tangents []mgl32.Vec3

	elapsed float32
	steps   uint64

	pool   *rowPool
	solver HeightSolver
}

// Create builds a flat grid of rows×cols samples spaced dx apart that steps
// every dt seconds with the given wave speed and damping.
//
// rows and cols must be at least 3 and dx and dt must be positive, otherwise
// the error wraps ErrInvalidParameter.
func Create(rows, cols int, dx, dt, speed, damping float32, opts ...Option) (*Grid, error) {
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("%w: grid %dx%d is smaller than 3x3", ErrInvalidParameter, rows, cols)
	}
	if !(dx > 0) || !(dt > 0) {
		return nil, fmt.Errorf("%w: spatial step %v and timestep %v must be positive", ErrInvalidParameter, dx, dt)
	}

	o := gridOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	size := rows * cols
	g := &Grid{
		rows:        rows,
		cols:        cols,
		spatialStep: dx,
		timeStep:    dt,
		speed:       speed,
		damping:     damping,
		k:           NewCoefficients(dx, dt, speed, damping),
		xs:          make([]float32, cols),
		zs:          make([]float32, rows),
		prev:        make([]float32, size),
		curr:        make([]float32, size),
		normals:     make([]mgl32.Vec3, size),
		tangents:    make([]mgl32.Vec3, size),
	}

	halfWidth := float32(cols-1) * dx * 0.5
	halfDepth := float32(rows-1) * dx * 0.5
	for j := range g.xs {
		g.xs[j] = -halfWidth + float32(j)*dx
	}
	for i := range g.zs {
		g.zs[i] = halfDepth - float32(i)*dx
	}
	g.resetSurface()

	interior := make([]int, 0, rows-2)
	for i := 1; i < rows-1; i++ {
		interior = append(interior, i)
	}
	g.pool = newRowPool(o.workers, interior)
	g.solver = o.solver
	if g.solver == nil {
		g.solver = &cpuSolver{pool: g.pool}
	}

	log := Logger()
	log.Debug("wave grid created",
		"rows", rows, "cols", cols,
		"dx", dx, "dt", dt, "speed", speed, "damping", damping,
		"k1", g.k.K1, "k2", g.k.K2, "k3", g.k.K3,
		"workers", g.pool.workers())
	if !g.Stable() {
		log.Warn("wave parameters outside the stable region",
			"courant", g.CourantNumber(), "limit", 1/math.Sqrt2)
	}
	return g, nil
}

func (g *Grid) resetSurface() {
	for i := range g.normals {
		g.normals[i] = restNormal
		g.tangents[i] = restTangent
	}
}

// Update adds deltaTime to the step accumulator and, once a full timestep
// has accumulated, advances the field by exactly one step. Any time beyond
// the timestep is discarded. It reports whether a step was taken.
//
// An error is only returned by a custom HeightSolver; the grid is left as it
// was before the call.
func (g *Grid) Update(deltaTime float32) (bool, error) {
	if deltaTime > 0 {
		g.elapsed += deltaTime
	}
	if g.elapsed < g.timeStep {
		return false, nil
	}

	if err := g.solver.StepHeights(g.prev, g.curr, g.rows, g.cols, g.k); err != nil {
		return false, fmt.Errorf("stepping heights: %w", err)
	}
	g.prev, g.curr = g.curr, g.prev
	g.elapsed = 0
	g.steps++

	heights := g.curr
	twoDx := 2 * g.spatialStep
	g.pool.run(func(i int) {
		surfaceRow(g.normals, g.tangents, heights, g.cols, i, twoDx)
	})
	return true, nil
}

// Disturb drops an impulse of the given magnitude on cell (i, j) and half of
// it on each of the four orthogonal neighbours. The cell must be at least two
// cells away from every border; otherwise ErrOutOfRange is returned and the
// grid is unchanged.
func (g *Grid) Disturb(i, j int, magnitude float32) error {
	if i <= 1 || i >= g.rows-2 || j <= 1 || j >= g.cols-2 {
		return fmt.Errorf("%w: cell (%d,%d) of %dx%d grid", ErrOutOfRange, i, j, g.rows, g.cols)
	}
	half := 0.5 * magnitude
	idx := i*g.cols + j
	g.curr[idx] += magnitude
	g.curr[idx+1] += half
	g.curr[idx-1] += half
	g.curr[idx+g.cols] += half
	g.curr[idx-g.cols] += half
	return nil
}

// Reset returns the grid to its flat rest state.
func (g *Grid) Reset() {
	clear(g.prev)
	clear(g.curr)
	g.resetSurface()
	g.elapsed = 0
	g.steps = 0
}

// Close stops the worker goroutines. The grid stays usable and runs later
// steps on the calling goroutine.
func (g *Grid) Close() {
	g.pool.close()
}

func (g *Grid) RowCount() int      { return g.rows }
func (g *Grid) ColumnCount() int   { return g.cols }
func (g *Grid) VertexCount() int   { return g.rows * g.cols }
func (g *Grid) TriangleCount() int { return (g.rows - 1) * (g.cols - 1) * 2 }

// Width is the extent of the grid along x.
func (g *Grid) Width() float32 { return float32(g.cols) * g.spatialStep }

// Depth is the extent of the grid along z.
func (g *Grid) Depth() float32 { return float32(g.rows) * g.spatialStep }

func (g *Grid) SpatialStep() float32        { return g.spatialStep }
func (g *Grid) TimeStep() float32           { return g.timeStep }
func (g *Grid) Coefficients() Coefficients { return g.k }

// Steps reports how many simulation steps have completed since creation or
// the last Reset.
func (g *Grid) Steps() uint64 { return g.steps }

// Workers reports how many row workers share a step.
func (g *Grid) Workers() int { return g.pool.workers() }

// Position returns the sample at flat index i*cols+j. Like a slice access it
// panics when index is out of range.
func (g *Grid) Position(index int) mgl32.Vec3 {
	h := g.curr[index]
	return mgl32.Vec3{g.xs[index%g.cols], h, g.zs[index/g.cols]}
}

// Normal returns the surface normal at a flat index.
func (g *Grid) Normal(index int) mgl32.Vec3 { return g.normals[index] }

// Tangent returns the surface tangent along +x at a flat index.
func (g *Grid) Tangent(index int) mgl32.Vec3 { return g.tangents[index] }

// Height returns the current height of cell (i, j).
func (g *Grid) Height(i, j int) float32 { return g.curr[i*g.cols+j] }

// Heights exposes the current height buffer, row-major. The slice is only
// valid until the next Update, Disturb or Reset.
func (g *Grid) Heights() []float32 { return g.curr }

// CourantNumber is speed·dt/dx, the quantity bounded by the stability
// condition of the explicit scheme.
func (g *Grid) CourantNumber() float64 {
	return float64(g.speed) * float64(g.timeStep) / float64(g.spatialStep)
}

// Stable reports whether the parameters satisfy speed·dt/dx ≤ 1/√2.
// Unstable grids still run but their heights grow without bound.
func (g *Grid) Stable() bool {
	return g.CourantNumber() <= 1/math.Sqrt2
}
