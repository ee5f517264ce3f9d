//go:build opencl

package clsolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jgillich/go-opencl/cl"

	"wavesim/waves"
)

const waveKernelSource = `__kernel void wave_step(
    const int rows,
    const int cols,
    const float k1,
    const float k2,
    const float k3,
    __global const float* curr,
    __global float* prev)
{
    int idx = get_global_id(0);
    if (idx >= rows * cols) {
        return;
    }
    int i = idx / cols;
    int j = idx % cols;
    if (i <= 0 || i >= rows - 1 || j <= 0 || j >= cols - 1) {
        return;
    }
    float neighbours = curr[idx + cols] + curr[idx - cols] + curr[idx + 1] + curr[idx - 1];
    prev[idx] = k1 * prev[idx] + k2 * curr[idx] + k3 * neighbours;
}`

// Solver runs the height stencil as an OpenCL kernel. Both buffers are
// uploaded every step because disturbances are applied on the host.
type Solver struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	currBuf    *cl.MemObject
	prevBuf    *cl.MemObject
	size       int
	deviceName string
}

var _ waves.HeightSolver = (*Solver)(nil)

// New builds the kernel on the first GPU device found, falling back to a
// CPU device.
func New() (*Solver, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: no OpenCL platforms available", ErrUnavailable)
	}
	device := firstDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = firstDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, fmt.Errorf("%w: no suitable OpenCL devices found", ErrUnavailable)
	}

	s := &Solver{deviceName: device.Name()}
	s.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	s.queue, err = s.context.CreateCommandQueue(device, 0)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = s.context.CreateProgramWithSource([]string{waveKernelSource})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		var buildErr cl.BuildError
		if errors.As(err, &buildErr) {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	s.kernel, err = s.program.CreateKernel("wave_step")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return s, nil
}

func firstDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// ensureBuffers (re)allocates device buffers for size cells.
func (s *Solver) ensureBuffers(size int) error {
	if s.size == size && s.currBuf != nil {
		return nil
	}
	s.releaseBuffers()
	byteSize := size * 4
	var err error
	s.currBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize)
	if err != nil {
		return fmt.Errorf("allocating current buffer: %w", err)
	}
	s.prevBuf, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize)
	if err != nil {
		s.releaseBuffers()
		return fmt.Errorf("allocating previous buffer: %w", err)
	}
	s.size = size
	return nil
}

func (s *Solver) StepHeights(prev, curr []float32, rows, cols int, k waves.Coefficients) error {
	size := rows * cols
	if len(prev) != size || len(curr) != size {
		return fmt.Errorf("unexpected height buffer size %d/%d for %dx%d grid", len(prev), len(curr), rows, cols)
	}
	if err := s.ensureBuffers(size); err != nil {
		return err
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.currBuf, false, 0, curr, nil); err != nil {
		return fmt.Errorf("writing current buffer: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.prevBuf, false, 0, prev, nil); err != nil {
		return fmt.Errorf("writing previous buffer: %w", err)
	}
	if err := s.kernel.SetArgs(
		int32(rows),
		int32(cols),
		k.K1,
		k.K2,
		k.K3,
		s.currBuf,
		s.prevBuf,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.kernel, nil, []int{size}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.prevBuf, true, 0, prev, nil); err != nil {
		return fmt.Errorf("reading previous buffer: %w", err)
	}
	return nil
}

func (s *Solver) releaseBuffers() {
	if s.prevBuf != nil {
		s.prevBuf.Release()
		s.prevBuf = nil
	}
	if s.currBuf != nil {
		s.currBuf.Release()
		s.currBuf = nil
	}
	s.size = 0
}

// Close releases every OpenCL object held by the solver.
func (s *Solver) Close() {
	s.releaseBuffers()
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

func (s *Solver) DeviceName() string {
	return s.deviceName
}
