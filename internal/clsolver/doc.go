// Package clsolver advances wave heights on an OpenCL device.
//
// The solver is only compiled in with the opencl build tag:
//
//	go build -tags opencl ./cmd/wavesim
//
// Without it New always fails and callers keep the CPU solver. Device
// arithmetic may contract multiply-adds, so heights can differ from the CPU
// solver in the last bits.
package clsolver
