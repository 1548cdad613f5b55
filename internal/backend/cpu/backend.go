// Package cpu implements the host reference device. It honours the same
// orchestration contract as the GPU backend and parallelises each dispatch
// over rows.
package cpu

import (
	"context"
	"fmt"

	"github.com/born-ml/superres/internal/parallel"
	"github.com/born-ml/superres/internal/tensor"
)

// CPUBackend executes the split, combine and convolve pipelines in host memory.
type CPUBackend struct {
	tensor.StatsTracker

	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend using all available cores.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit row parallelism.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Allocate creates a zero-initialized resource.
func (cpu *CPUBackend) Allocate(width, height, depth int, format tensor.Format) (tensor.Resource, error) {
	return cpu.newResource(tensor.NewShape(width, height, depth), format)
}

// Upload copies interleaved RGBA8 pixels into dst.
func (cpu *CPUBackend) Upload(dst tensor.Resource, pix []byte) error {
	r, err := cpu.resource(dst)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if r.format != tensor.RGBA8 {
		return tensor.Contract("upload", tensor.ErrFormat, "destination is %s", r.format)
	}
	if len(pix) != len(r.pix) {
		return tensor.Contract("upload", tensor.ErrShapeMismatch, "%d bytes for %v pixels", len(pix), r.shape)
	}
	copy(r.pix, pix)
	return nil
}

// WriteFloat32 copies plane-major samples into a Float32 resource.
func (cpu *CPUBackend) WriteFloat32(dst tensor.Resource, data []float32) error {
	r, err := cpu.resource(dst)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if r.format != tensor.Float32 {
		return tensor.Contract("write_float32", tensor.ErrFormat, "destination is %s", r.format)
	}
	if len(data) != len(r.data) {
		return tensor.Contract("write_float32", tensor.ErrShapeMismatch, "%d samples for %v", len(data), r.shape)
	}
	copy(r.data, data)
	return nil
}

// Dispatch runs pipeline p synchronously.
func (cpu *CPUBackend) Dispatch(ctx context.Context, p tensor.Pipeline, in, out tensor.Resource, c *tensor.Constants) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := cpu.resource(in)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", p, err)
	}
	dst, err := cpu.resource(out)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", p, err)
	}
	if err := tensor.CheckDispatch(p, in, out, c); err != nil {
		return err
	}

	switch p {
	case tensor.PipelineSplit:
		splitRGBA(dst.data, src.pix, src.shape.PlaneSize(), cpu.par)
	case tensor.PipelineCombine:
		combineRGB(dst.pix, src.data, src.shape.PlaneSize(), cpu.par)
	case tensor.PipelineConvolve:
		convolve3x3(dst.data, src.data, src.shape, c, cpu.par)
	}
	cpu.TrackSubmission(true)
	return nil
}

// Assemble copies depth-1 planes into consecutive slots of a new stack.
func (cpu *CPUBackend) Assemble(ctx context.Context, planes []tensor.Resource) (tensor.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tensor.CheckAssemble(planes); err != nil {
		return nil, err
	}
	srcs := make([]*resource, len(planes))
	for i, p := range planes {
		r, err := cpu.resource(p)
		if err != nil {
			return nil, fmt.Errorf("assemble plane %d: %w", i, err)
		}
		srcs[i] = r
	}

	shape := planes[0].Shape().WithDepth(len(planes))
	out, err := cpu.newResource(shape, tensor.Float32)
	if err != nil {
		return nil, err
	}
	n := shape.PlaneSize()
	for i, r := range srcs {
		copy(out.data[i*n:(i+1)*n], r.data)
	}
	cpu.TrackSubmission(false)
	return out, nil
}

// Synchronize is a no-op beyond validation: host memory is always coherent.
func (cpu *CPUBackend) Synchronize(ctx context.Context, r tensor.Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := cpu.resource(r); err != nil {
		return fmt.Errorf("synchronize: %w", err)
	}
	cpu.TrackSubmission(false)
	return nil
}

// ReadRGBA returns a copy of the pixels of an RGBA8 resource.
func (cpu *CPUBackend) ReadRGBA(r tensor.Resource) ([]byte, error) {
	res, err := cpu.resource(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if res.format != tensor.RGBA8 {
		return nil, tensor.Contract("read_rgba", tensor.ErrFormat, "resource is %s", res.format)
	}
	out := make([]byte, len(res.pix))
	copy(out, res.pix)
	return out, nil
}

// ReadFloat32 returns a copy of the samples of a Float32 resource.
func (cpu *CPUBackend) ReadFloat32(r tensor.Resource) ([]float32, error) {
	res, err := cpu.resource(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if res.format != tensor.Float32 {
		return nil, tensor.Contract("read_float32", tensor.ErrFormat, "resource is %s", res.format)
	}
	out := make([]float32, len(res.data))
	copy(out, res.data)
	return out, nil
}

// Stats returns resource and submission counters.
func (cpu *CPUBackend) Stats() tensor.Stats {
	return cpu.Snapshot()
}

// Release is a no-op; host resources are garbage collected.
func (cpu *CPUBackend) Release() {}
