package tensor

import (
	"context"
	"sync"
)

// Pipeline selects one of the precompiled device kernels.
type Pipeline int

// Pipelines used by the inference engine.
const (
	// PipelineSplit converts an RGBA8 resource into a depth-3 Float32 stack.
	PipelineSplit Pipeline = iota
	// PipelineCombine converts a depth-3 Float32 stack into an RGBA8 resource.
	PipelineCombine
	// PipelineConvolve computes one output plane from a whole input stack.
	PipelineConvolve
)

func (p Pipeline) String() string {
	switch p {
	case PipelineSplit:
		return "split"
	case PipelineCombine:
		return "combine"
	case PipelineConvolve:
		return "convolve"
	default:
		return "unknown"
	}
}

// Resource is a device-resident plane-stack (Float32) or image (RGBA8, depth 1).
// A resource is owned by the stage that allocated it and written by exactly
// one dispatch.
type Resource interface {
	Shape() Shape
	Format() Format
	// Release frees device memory. Further use fails with ErrReleased.
	Release()
}

// Constants are the per-dispatch values bound next to the convolve pipeline.
type Constants struct {
	// Weights holds one kernel per input plane, in input order.
	Weights []Kernel
	// Bias is added to the accumulated sum.
	Bias float32
	// NegativeSlope multiplies negative results; 1 leaves them unchanged.
	NegativeSlope float32
}

// Backend is the resource orchestrator every compute device implements.
//
// Implementations:
//   - internal/backend/cpu: host reference device
//   - internal/backend/webgpu: WebGPU compute device
type Backend interface {
	// Allocate creates a zero-initialized resource.
	Allocate(width, height, depth int, format Format) (Resource, error)

	// Upload writes interleaved RGBA8 pixels into an RGBA8 resource.
	Upload(dst Resource, pix []byte) error

	// WriteFloat32 writes plane-major samples into a Float32 resource.
	WriteFloat32(dst Resource, data []float32) error

	// Dispatch binds in, out and c to pipeline p, runs one 2D grid over the
	// output plane and blocks until the device has finished.
	Dispatch(ctx context.Context, p Pipeline, in, out Resource, c *Constants) error

	// Assemble copies depth-1 planes into consecutive slots of a new stack.
	Assemble(ctx context.Context, planes []Resource) (Resource, error)

	// Synchronize makes the latest device writes to r visible to the host.
	Synchronize(ctx context.Context, r Resource) error

	// ReadRGBA returns the pixels of an RGBA8 resource.
	ReadRGBA(r Resource) ([]byte, error)

	// ReadFloat32 returns the samples of a Float32 resource, plane-major.
	ReadFloat32(r Resource) ([]float32, error)

	Stats() Stats
	Release()

	Name() string
	Device() Device
}

// CheckDispatch validates the bindings of a dispatch against the pipeline's
// contract. Backends call it before touching the device.
func CheckDispatch(p Pipeline, in, out Resource, c *Constants) error {
	const op = "dispatch"
	inShape, outShape := in.Shape(), out.Shape()
	if !inShape.SamePlane(outShape) {
		return Contract(op, ErrShapeMismatch, "%s: input %v and output %v differ in plane size", p, inShape, outShape)
	}
	switch p {
	case PipelineSplit:
		if in.Format() != RGBA8 || out.Format() != Float32 {
			return Contract(op, ErrFormat, "split expects rgba8 -> float32, got %s -> %s", in.Format(), out.Format())
		}
		if outShape.Depth() != 3 {
			return Contract(op, ErrDepthMismatch, "split writes 3 planes, output has %d", outShape.Depth())
		}
	case PipelineCombine:
		if in.Format() != Float32 || out.Format() != RGBA8 {
			return Contract(op, ErrFormat, "combine expects float32 -> rgba8, got %s -> %s", in.Format(), out.Format())
		}
		if inShape.Depth() != 3 {
			return Contract(op, ErrDepthMismatch, "combine requires 3 planes, got %d", inShape.Depth())
		}
	case PipelineConvolve:
		if in.Format() != Float32 || out.Format() != Float32 {
			return Contract(op, ErrFormat, "convolve expects float32 -> float32, got %s -> %s", in.Format(), out.Format())
		}
		if c == nil {
			return Contract(op, ErrShapeMismatch, "convolve requires constants")
		}
		if len(c.Weights) != inShape.Depth() {
			return Contract(op, ErrDepthMismatch, "%d weights for %d input planes", len(c.Weights), inShape.Depth())
		}
		if outShape.Depth() != 1 {
			return Contract(op, ErrDepthMismatch, "convolve writes 1 plane, output has %d", outShape.Depth())
		}
	default:
		return Contract(op, ErrFormat, "unknown pipeline %d", int(p))
	}
	return nil
}

// CheckAssemble validates the planes handed to Assemble.
func CheckAssemble(planes []Resource) error {
	const op = "assemble"
	if len(planes) == 0 {
		return Contract(op, ErrDepthMismatch, "no planes")
	}
	first := planes[0].Shape()
	for i, p := range planes {
		if p.Format() != Float32 {
			return Contract(op, ErrFormat, "plane %d is %s", i, p.Format())
		}
		if p.Shape().Depth() != 1 {
			return Contract(op, ErrDepthMismatch, "plane %d has depth %d", i, p.Shape().Depth())
		}
		if !p.Shape().SamePlane(first) {
			return Contract(op, ErrShapeMismatch, "plane %d is %v, plane 0 is %v", i, p.Shape(), first)
		}
	}
	return nil
}

// Stats reports resource and submission counters of a backend.
type Stats struct {
	TotalAllocatedBytes uint64 // Bytes currently held by live resources
	PeakMemoryBytes     uint64
	ActiveResources     int64
	Dispatches          uint64
	Submissions         uint64 // Command buffers submitted (dispatch, assemble, sync)
}

// StatsTracker accumulates Stats under a mutex. Backends embed it.
type StatsTracker struct {
	mu    sync.Mutex
	stats Stats
}

// TrackAllocation records a new resource of size bytes.
func (t *StatsTracker) TrackAllocation(size uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalAllocatedBytes += size
	t.stats.ActiveResources++
	if t.stats.TotalAllocatedBytes > t.stats.PeakMemoryBytes {
		t.stats.PeakMemoryBytes = t.stats.TotalAllocatedBytes
	}
}

// TrackRelease records that a resource of size bytes was released.
func (t *StatsTracker) TrackRelease(size uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stats.TotalAllocatedBytes >= size {
		t.stats.TotalAllocatedBytes -= size
	}
	t.stats.ActiveResources--
}

// TrackSubmission records one submitted command buffer.
func (t *StatsTracker) TrackSubmission(dispatch bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Submissions++
	if dispatch {
		t.stats.Dispatches++
	}
}

// Snapshot returns a copy of the counters.
func (t *StatsTracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
