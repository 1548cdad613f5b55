//go:build windows

// Package webgpu implements the WebGPU compute device.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/superres/internal/logging"
	"github.com/born-ml/superres/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Backend runs the split, combine and convolve pipelines on a GPU.
type Backend struct {
	tensor.StatsTracker

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// submitMu serialises encode/submit/wait round trips so concurrent
	// dispatches from the engine never interleave on the queue.
	submitMu sync.Mutex

	adapterInfo *wgpu.AdapterInfoGo

	// Readback staging buffers are recycled through the pool.
	bufferPool *BufferPool
}

// New creates a new WebGPU backend and compiles its three pipelines.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: %w: native library: %v", tensor.ErrUnavailable, r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("webgpu: %w: create instance: %w", tensor.ErrUnavailable, instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: request adapter: %w", tensor.ErrUnavailable, adapterErr)
	}

	// Adapter info is descriptive only; a failed query leaves it nil.
	adapterInfo, infoErr := adapter.GetInfo()
	if infoErr != nil {
		logging.Logger().Debug("webgpu adapter info unavailable", "error", infoErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: request device: %w", tensor.ErrUnavailable, deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: %w: no queue", tensor.ErrUnavailable)
	}

	b := &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: adapterInfo,
		bufferPool:  NewBufferPool(device),
	}

	// Build every pipeline up front so a broken shader fails here rather than
	// in the middle of a run.
	for _, p := range []tensor.Pipeline{tensor.PipelineSplit, tensor.PipelineCombine, tensor.PipelineConvolve} {
		b.pipeline(p)
	}

	logging.Logger().Info("webgpu device ready", "adapter", b.Name())
	return b, nil
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.submitMu.Lock()
	defer b.submitMu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bufferPool != nil {
		hits, misses, pooled := b.bufferPool.Stats()
		logging.Logger().Debug("webgpu staging pool", "hits", hits, "misses", misses, "pooled", pooled)
		b.bufferPool.Clear()
		b.bufferPool = nil
	}
	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	if b.adapterInfo != nil && b.adapterInfo.Device != "" {
		return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Device, b.adapterInfo.Vendor)
	}
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterInfo returns information about the GPU adapter, or nil if the
// adapter did not report any.
func (b *Backend) AdapterInfo() *wgpu.AdapterInfoGo {
	return b.adapterInfo
}

// Stats returns resource and submission counters.
func (b *Backend) Stats() tensor.Stats {
	return b.Snapshot()
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// Open returns a WebGPU device as a tensor.Backend.
func Open() (tensor.Backend, error) {
	b, err := New()
	if err != nil {
		return nil, err
	}
	return b, nil
}
