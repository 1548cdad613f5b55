//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// maxPooled bounds the number of idle buffers kept per size.
const maxPooled = 8

type poolKey struct {
	size  uint64
	usage wgpu.BufferUsage
}

// BufferPool recycles buffers whose contents are always overwritten before
// use (readback staging buffers). Resource buffers are never pooled because
// Allocate promises zeroed memory.
type BufferPool struct {
	device *wgpu.Device
	free   map[poolKey][]*wgpu.Buffer
	mu     sync.Mutex

	// Statistics
	hits   uint64
	misses uint64
}

// NewBufferPool creates a new buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		free:   make(map[poolKey][]*wgpu.Buffer),
	}
}

// Acquire returns an idle buffer of exactly size and usage, or creates one.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := poolKey{size: size, usage: usage}
	if bufs := p.free[key]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		p.free[key] = bufs[:len(bufs)-1]
		p.hits++
		return buf
	}

	p.misses++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool, or frees it if the pool is full.
func (p *BufferPool) Release(buf *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := poolKey{size: size, usage: usage}
	if len(p.free[key]) >= maxPooled {
		buf.Release()
		return
	}
	p.free[key] = append(p.free[key], buf)
}

// Clear releases all pooled buffers.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, bufs := range p.free {
		for _, buf := range bufs {
			buf.Release()
		}
		delete(p.free, key)
	}
}

// Stats returns pool hits, misses and the number of idle buffers.
func (p *BufferPool) Stats() (hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, bufs := range p.free {
		pooled += len(bufs)
	}
	return p.hits, p.misses, pooled
}
