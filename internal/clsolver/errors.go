package clsolver

import "errors"

// ErrUnavailable is returned when no OpenCL solver can be created.
var ErrUnavailable = errors.New("clsolver: OpenCL support is not enabled; rebuild with -tags opencl")
