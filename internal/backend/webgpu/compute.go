//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/born-ml/superres/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

const stagingUsage = wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst

// shaderSource maps each pipeline to its WGSL.
var shaderSource = map[tensor.Pipeline]string{
	tensor.PipelineSplit:    splitShader,
	tensor.PipelineCombine:  combineShader,
	tensor.PipelineConvolve: convolveShader,
}

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// pipeline returns the cached ComputePipeline for p, creating it on first use.
func (b *Backend) pipeline(p tensor.Pipeline) *wgpu.ComputePipeline {
	name := p.String()

	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	shader := b.compileShader(name, shaderSource[p])
	// Auto layout (nil) derives bind groups from the shader.
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a GPU buffer initialised with data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer rounded up to 16 bytes.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	aligned := make([]byte, (len(data)+15)&^15)
	copy(aligned, data)
	return b.createBuffer(aligned, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

// newStorage creates a zero-initialised resource buffer.
func (b *Backend) newStorage(size uint64) *wgpu.Buffer {
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: resourceUsage,
		Size:  size,
	})
}

// submitAndWait finishes encoder, appends a 4-byte copy of probe into a
// staging buffer, submits the single command buffer and blocks until the
// staging buffer maps, i.e. until the device has executed everything before
// it. Map failures are device errors.
func (b *Backend) submitAndWait(op string, encoder *wgpu.CommandEncoder, probe *wgpu.Buffer) error {
	const probeSize = 4
	staging := b.bufferPool.Acquire(probeSize, stagingUsage)
	defer b.bufferPool.Release(staging, probeSize, stagingUsage)

	encoder.CopyBufferToBuffer(probe, 0, staging, 0, probeSize)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, probeSize); err != nil {
		return &tensor.DeviceError{Op: op, Err: err}
	}
	staging.Unmap()
	return nil
}

// readBuffer copies size bytes of src back to host memory.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.bufferPool.Acquire(size, stagingUsage)
	defer b.bufferPool.Release(staging, size, stagingUsage)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, &tensor.DeviceError{Op: "read", Err: fmt.Errorf("map staging buffer: %w", err)}
	}

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)
	staging.Unmap()

	return result, nil
}

// recoverDevice converts a panic raised inside the bindings into a DeviceError.
func recoverDevice(op string, err *error) {
	if r := recover(); r != nil {
		*err = &tensor.DeviceError{Op: op, Err: fmt.Errorf("%v", r)}
	}
}

func float32Bytes(data []float32) []byte {
	out := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

func bytesFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}

// kernelBytes flattens kernels into consecutive 9-float blocks.
func kernelBytes(ks []tensor.Kernel) []byte {
	flat := make([]float32, 0, len(ks)*len(tensor.Kernel{}))
	for _, k := range ks {
		flat = append(flat, k[:]...)
	}
	return float32Bytes(flat)
}

func workgroups(width, height int) (x, y uint32) {
	//nolint:gosec // G115: dimensions are validated positive
	return uint32((width + tileWidth - 1) / tileWidth), uint32((height + tileHeight - 1) / tileHeight)
}
