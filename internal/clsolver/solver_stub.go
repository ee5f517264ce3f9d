//go:build !opencl

package clsolver

import "wavesim/waves"

// Solver is unavailable in builds without the opencl tag.
type Solver struct{}

var _ waves.HeightSolver = (*Solver)(nil)

// New always fails without the opencl build tag.
func New() (*Solver, error) {
	return nil, ErrUnavailable
}

func (s *Solver) StepHeights(prev, curr []float32, rows, cols int, k waves.Coefficients) error {
	return ErrUnavailable
}

func (s *Solver) Close() {}

func (s *Solver) DeviceName() string { return "" }
