//go:build windows

package webgpu

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/superres/internal/logging"
	"github.com/born-ml/superres/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Allocate creates a zero-initialized storage buffer for a resource.
func (b *Backend) Allocate(width, height, depth int, format tensor.Format) (res tensor.Resource, err error) {
	defer recoverDevice("allocate", &err)

	shape := tensor.NewShape(width, height, depth)
	if err := shape.Validate(); err != nil {
		return nil, tensor.Contract("allocate", tensor.ErrShapeMismatch, "%v", err)
	}
	if format == tensor.RGBA8 && depth != 1 {
		return nil, tensor.Contract("allocate", tensor.ErrDepthMismatch, "rgba8 resources have depth 1, got %d", depth)
	}

	//nolint:gosec // G115: shape validated positive
	size := uint64(shape.NumElements() * format.Size())
	buf := b.newStorage(size)
	if buf == nil {
		return nil, &tensor.DeviceError{Op: "allocate", Err: fmt.Errorf("create buffer of %d bytes", size)}
	}
	b.TrackAllocation(size)

	return &gpuResource{buffer: buf, shape: shape, format: format, size: size, owner: b}, nil
}

// Upload writes RGBA8 pixels into dst through a mapped staging buffer.
func (b *Backend) Upload(dst tensor.Resource, pix []byte) error {
	r, err := b.resource(dst)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if r.format != tensor.RGBA8 {
		return tensor.Contract("upload", tensor.ErrFormat, "destination is %s", r.format)
	}
	if uint64(len(pix)) != r.size {
		return tensor.Contract("upload", tensor.ErrShapeMismatch, "%d bytes for %v pixels", len(pix), r.shape)
	}
	return b.write("upload", r, pix)
}

// WriteFloat32 writes plane-major samples into a Float32 resource.
func (b *Backend) WriteFloat32(dst tensor.Resource, data []float32) error {
	r, err := b.resource(dst)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if r.format != tensor.Float32 {
		return tensor.Contract("write_float32", tensor.ErrFormat, "destination is %s", r.format)
	}
	if uint64(4*len(data)) != r.size {
		return tensor.Contract("write_float32", tensor.ErrShapeMismatch, "%d samples for %v", len(data), r.shape)
	}
	return b.write("write", r, float32Bytes(data))
}

func (b *Backend) write(op string, r *gpuResource, data []byte) (err error) {
	defer recoverDevice(op, &err)

	staging := b.createBuffer(data, wgpu.BufferUsageCopySrc)
	defer staging.Release()

	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, r.buffer, 0, r.size)
	b.TrackSubmission(false)
	return b.submitAndWait(op, encoder, r.buffer)
}

// Dispatch binds in, out and the constant buffers to pipeline p, runs one
// 16x16-tiled grid over the plane and waits for completion.
func (b *Backend) Dispatch(ctx context.Context, p tensor.Pipeline, in, out tensor.Resource, c *tensor.Constants) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := b.resource(in)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", p, err)
	}
	dst, err := b.resource(out)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", p, err)
	}
	if err := tensor.CheckDispatch(p, in, out, c); err != nil {
		return err
	}
	defer recoverDevice("dispatch "+p.String(), &err)

	w, h := src.shape.Width(), src.shape.Height()
	pipeline := b.pipeline(p)

	// Constants are written into fresh buffers before the submit that reads them.
	var params []byte
	entries := []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, src.buffer, 0, src.size),
		wgpu.BufferBindingEntry(1, dst.buffer, 0, dst.size),
	}
	switch p {
	case tensor.PipelineSplit, tensor.PipelineCombine:
		params = make([]byte, 8)
		binary.LittleEndian.PutUint32(params[0:4], uint32(w)) //nolint:gosec // G115: validated positive
		binary.LittleEndian.PutUint32(params[4:8], uint32(h)) //nolint:gosec // G115: validated positive
	case tensor.PipelineConvolve:
		weights := b.createBuffer(kernelBytes(c.Weights), wgpu.BufferUsageStorage)
		defer weights.Release()
		//nolint:gosec // G115: kernel count is small and positive
		entries = append(entries, wgpu.BufferBindingEntry(2, weights, 0, uint64(36*len(c.Weights))))

		params = make([]byte, 32)
		binary.LittleEndian.PutUint32(params[0:4], uint32(w))                   //nolint:gosec // G115: validated positive
		binary.LittleEndian.PutUint32(params[4:8], uint32(h))                   //nolint:gosec // G115: validated positive
		binary.LittleEndian.PutUint32(params[8:12], uint32(src.shape.Depth())) //nolint:gosec // G115: validated positive
		binary.LittleEndian.PutUint32(params[16:20], math.Float32bits(c.Bias))
		binary.LittleEndian.PutUint32(params[20:24], math.Float32bits(c.NegativeSlope))
	}
	uniform := b.createUniformBuffer(params)
	defer uniform.Release()
	//nolint:gosec // G115: uniform size is 16 or 32
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(entries)), uniform, 0, uint64((len(params)+15)&^15)))

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	gx, gy := workgroups(w, h)
	computePass.DispatchWorkgroups(gx, gy, 1)
	computePass.End()

	logging.Logger().Debug("webgpu dispatch", "pipeline", p.String(), "groups_x", gx, "groups_y", gy)
	b.TrackSubmission(true)
	return b.submitAndWait("dispatch "+p.String(), encoder, dst.buffer)
}

// Assemble copies single planes into consecutive slots of a new stack with
// one command buffer of buffer-to-buffer copies.
func (b *Backend) Assemble(ctx context.Context, planes []tensor.Resource) (res tensor.Resource, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tensor.CheckAssemble(planes); err != nil {
		return nil, err
	}
	srcs := make([]*gpuResource, len(planes))
	for i, p := range planes {
		r, err := b.resource(p)
		if err != nil {
			return nil, fmt.Errorf("assemble plane %d: %w", i, err)
		}
		srcs[i] = r
	}

	shape := planes[0].Shape()
	out, err := b.Allocate(shape.Width(), shape.Height(), len(planes), tensor.Float32)
	if err != nil {
		return nil, err
	}
	dst := out.(*gpuResource)
	defer func() {
		if err != nil {
			out.Release()
		}
	}()
	defer recoverDevice("assemble", &err)

	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	encoder := b.device.CreateCommandEncoder(nil)
	for i, r := range srcs {
		//nolint:gosec // G115: slot index is non-negative
		encoder.CopyBufferToBuffer(r.buffer, 0, dst.buffer, uint64(i)*r.size, r.size)
	}
	b.TrackSubmission(false)
	if err := b.submitAndWait("assemble", encoder, dst.buffer); err != nil {
		return nil, err
	}
	return out, nil
}

// Synchronize blocks until every submitted write to r has completed.
func (b *Backend) Synchronize(ctx context.Context, r tensor.Resource) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := b.resource(r)
	if err != nil {
		return fmt.Errorf("synchronize: %w", err)
	}
	defer recoverDevice("synchronize", &err)

	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	b.TrackSubmission(false)
	return b.submitAndWait("synchronize", b.device.CreateCommandEncoder(nil), res.buffer)
}

// ReadRGBA returns the pixels of an RGBA8 resource.
func (b *Backend) ReadRGBA(r tensor.Resource) (pix []byte, err error) {
	res, err := b.resource(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if res.format != tensor.RGBA8 {
		return nil, tensor.Contract("read_rgba", tensor.ErrFormat, "resource is %s", res.format)
	}
	defer recoverDevice("read", &err)

	b.submitMu.Lock()
	defer b.submitMu.Unlock()
	return b.readBuffer(res.buffer, res.size)
}

// ReadFloat32 returns the samples of a Float32 resource.
func (b *Backend) ReadFloat32(r tensor.Resource) (data []float32, err error) {
	res, err := b.resource(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if res.format != tensor.Float32 {
		return nil, tensor.Contract("read_float32", tensor.ErrFormat, "resource is %s", res.format)
	}
	defer recoverDevice("read", &err)

	b.submitMu.Lock()
	defer b.submitMu.Unlock()
	raw, err := b.readBuffer(res.buffer, res.size)
	if err != nil {
		return nil, err
	}
	return bytesFloat32(raw), nil
}
