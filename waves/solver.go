package waves

import "github.com/go-gl/mathgl/mgl32"

// Coefficients are the finite-difference weights of the damped wave
// equation, fixed when the grid is created.
type Coefficients struct {
	K1 float32 // weight of the previous height
	K2 float32 // weight of the current height
	K3 float32 // weight of each of the four current neighbours
}

// NewCoefficients derives the stencil weights for spatial step dx, timestep
// dt, propagation speed and damping.
func NewCoefficients(dx, dt, speed, damping float32) Coefficients {
	d := damping*dt + 2
	e := (speed * speed) * (dt * dt) / (dx * dx)
	return Coefficients{
		K1: (damping*dt - 2) / d,
		K2: (4 - 8*e) / d,
		K3: (2 * e) / d,
	}
}

// Apply evaluates the stencil for one cell. Every product is rounded to
// float32 before it is summed, so no backend may fuse the operations.
func (k Coefficients) Apply(prev, curr, down, up, right, left float32) float32 {
	return float32(k.K1*prev) + float32(k.K2*curr) + float32(k.K3*(down+up+right+left))
}

// HeightSolver advances the interior heights by one step. On return prev
// must hold the new heights for every cell with 1 ≤ i < rows-1 and
// 1 ≤ j < cols-1; all other cells of prev must be left untouched and curr
// must not be modified.
type HeightSolver interface {
	StepHeights(prev, curr []float32, rows, cols int, k Coefficients) error
}

// cpuSolver runs the stencil row by row on the grid's worker pool.
type cpuSolver struct {
	pool *rowPool
}

func (s *cpuSolver) StepHeights(prev, curr []float32, rows, cols int, k Coefficients) error {
	s.pool.run(func(i int) {
		stepRow(prev, curr, cols, i, k)
	})
	return nil
}

// stepRow writes the next heights of interior row i into prev.
func stepRow(prev, curr []float32, cols, i int, k Coefficients) {
	base := i * cols
	up := base - cols
	down := base + cols
	for j := 1; j < cols-1; j++ {
		idx := base + j
		prev[idx] = k.Apply(prev[idx], curr[idx], curr[down+j], curr[up+j], curr[idx+1], curr[idx-1])
	}
}

// surfaceRow recomputes normals and tangents of interior row i from the
// central differences of the height field.
func surfaceRow(normals, tangents []mgl32.Vec3, heights []float32, cols, i int, twoDx float32) {
	base := i * cols
	for j := 1; j < cols-1; j++ {
		idx := base + j
		l := heights[idx-1]
		r := heights[idx+1]
		t := heights[idx-cols]
		b := heights[idx+cols]
		normals[idx] = mgl32.Vec3{-r + l, twoDx, b - t}.Normalize()
		tangents[idx] = mgl32.Vec3{twoDx, r - l, 0}.Normalize()
	}
}
