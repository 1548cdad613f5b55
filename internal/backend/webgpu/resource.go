//go:build windows

package webgpu

import (
	"sync"

	"github.com/born-ml/superres/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// resourceUsage lets a resource be bound as storage and copied both ways.
const resourceUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// gpuResource is a storage buffer holding a plane-stack or an RGBA8 image.
type gpuResource struct {
	buffer *wgpu.Buffer
	shape  tensor.Shape
	format tensor.Format
	size   uint64
	owner  *Backend

	mu       sync.Mutex
	released bool
}

func (r *gpuResource) Shape() tensor.Shape   { return r.shape }
func (r *gpuResource) Format() tensor.Format { return r.format }

func (r *gpuResource) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.buffer.Release()
	r.buffer = nil
	r.owner.TrackRelease(r.size)
}

func (b *Backend) resource(r tensor.Resource) (*gpuResource, error) {
	res, ok := r.(*gpuResource)
	if !ok || res.owner != b {
		return nil, tensor.ErrForeign
	}
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.released {
		return nil, tensor.ErrReleased
	}
	return res, nil
}
