package cpu

import (
	"github.com/born-ml/superres/internal/tensor"
)

// resource is a host-memory plane-stack or RGBA8 image.
type resource struct {
	shape    tensor.Shape
	format   tensor.Format
	pix      []byte    // RGBA8
	data     []float32 // Float32, plane-major
	owner    *CPUBackend
	released bool
}

func (r *resource) Shape() tensor.Shape   { return r.shape }
func (r *resource) Format() tensor.Format { return r.format }

func (r *resource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.pix, r.data = nil, nil
	r.owner.TrackRelease(r.byteSize())
}

func (r *resource) byteSize() uint64 {
	//nolint:gosec // G115: shape dimensions are validated positive
	return uint64(r.shape.NumElements() * r.format.Size())
}

func (cpu *CPUBackend) newResource(shape tensor.Shape, format tensor.Format) (*resource, error) {
	if err := shape.Validate(); err != nil {
		return nil, tensor.Contract("allocate", tensor.ErrShapeMismatch, "%v", err)
	}
	r := &resource{shape: shape, format: format, owner: cpu}
	switch format {
	case tensor.RGBA8:
		if shape.Depth() != 1 {
			return nil, tensor.Contract("allocate", tensor.ErrDepthMismatch, "rgba8 resources have depth 1, got %d", shape.Depth())
		}
		r.pix = make([]byte, 4*shape.PlaneSize())
	case tensor.Float32:
		r.data = make([]float32, shape.NumElements())
	default:
		return nil, tensor.Contract("allocate", tensor.ErrFormat, "format %d", int(format))
	}
	cpu.TrackAllocation(r.byteSize())
	return r, nil
}

func (cpu *CPUBackend) resource(r tensor.Resource) (*resource, error) {
	res, ok := r.(*resource)
	if !ok || res.owner != cpu {
		return nil, tensor.ErrForeign
	}
	if res.released {
		return nil, tensor.ErrReleased
	}
	return res, nil
}
