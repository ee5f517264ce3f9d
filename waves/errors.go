package waves

import "errors"

var (
	// ErrInvalidParameter reports grid dimensions or steps that cannot
	// support the simulation.
	ErrInvalidParameter = errors.New("waves: invalid parameter")

	// ErrOutOfRange reports a disturbance too close to the grid border.
	ErrOutOfRange = errors.New("waves: index out of range")
)
