package cpu

import (
	"context"
	"testing"

	"github.com/born-ml/superres/internal/parallel"
	"github.com/born-ml/superres/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Verify that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

func alloc(t *testing.T, b tensor.Backend, w, h, d int, f tensor.Format) tensor.Resource {
	t.Helper()
	r, err := b.Allocate(w, h, d, f)
	require.NoError(t, err)
	return r
}

func TestAllocateZeroed(t *testing.T) {
	b := New()
	r := alloc(t, b, 5, 3, 4, tensor.Float32)

	assert.True(t, r.Shape().Equal(tensor.NewShape(5, 3, 4)))
	data, err := b.ReadFloat32(r)
	require.NoError(t, err)
	assert.Len(t, data, 60)
	for _, v := range data {
		assert.Zero(t, v)
	}

	stats := b.Stats()
	assert.Equal(t, int64(1), stats.ActiveResources)
	assert.Equal(t, uint64(240), stats.TotalAllocatedBytes)
}

func TestAllocateRejectsInvalid(t *testing.T) {
	b := New()
	_, err := b.Allocate(0, 4, 1, tensor.Float32)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = b.Allocate(4, 4, 3, tensor.RGBA8)
	assert.ErrorIs(t, err, tensor.ErrDepthMismatch)
}

func TestUploadAndReadRGBA(t *testing.T) {
	b := New()
	r := alloc(t, b, 2, 1, 1, tensor.RGBA8)

	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, b.Upload(r, pix))
	got, err := b.ReadRGBA(r)
	require.NoError(t, err)
	assert.Equal(t, pix, got)

	assert.ErrorIs(t, b.Upload(r, pix[:4]), tensor.ErrShapeMismatch)
	_, err = b.ReadFloat32(r)
	assert.ErrorIs(t, err, tensor.ErrFormat)
}

func TestSplitCombineRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := New()
	w, h := 16, 9

	pix := make([]byte, 4*w*h)
	for i := range pix {
		pix[i] = byte(i * 7)
	}
	img := alloc(t, b, w, h, 1, tensor.RGBA8)
	require.NoError(t, b.Upload(img, pix))

	planes := alloc(t, b, w, h, 3, tensor.Float32)
	require.NoError(t, b.Dispatch(ctx, tensor.PipelineSplit, img, planes, nil))

	data, err := b.ReadFloat32(planes)
	require.NoError(t, err)
	assert.InDelta(t, float32(pix[4*5+1])/255, data[w*h+5], 1e-7)

	out := alloc(t, b, w, h, 1, tensor.RGBA8)
	require.NoError(t, b.Dispatch(ctx, tensor.PipelineCombine, planes, out, nil))
	require.NoError(t, b.Synchronize(ctx, out))

	got, err := b.ReadRGBA(out)
	require.NoError(t, err)
	for i := 0; i < w*h; i++ {
		assert.Equal(t, pix[4*i:4*i+3], got[4*i:4*i+3], "pixel %d", i)
		assert.Equal(t, byte(255), got[4*i+3])
	}
}

func TestAssemble(t *testing.T) {
	ctx := context.Background()
	b := New()

	var planes []tensor.Resource
	for i := 0; i < 4; i++ {
		p := alloc(t, b, 3, 2, 1, tensor.Float32)
		p.(*resource).data[0] = float32(i + 1)
		planes = append(planes, p)
	}

	stack, err := b.Assemble(ctx, planes)
	require.NoError(t, err)
	assert.Equal(t, 4, stack.Shape().Depth())

	data, err := b.ReadFloat32(stack)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.Equal(t, float32(i+1), data[i*6], "slot %d keeps result order", i)
	}
}

func TestReleasedAndForeignResources(t *testing.T) {
	ctx := context.Background()
	b := New()
	other := New()

	r := alloc(t, b, 2, 2, 1, tensor.Float32)
	r.Release()
	r.Release()
	assert.Equal(t, int64(0), b.Stats().ActiveResources)

	_, err := b.ReadFloat32(r)
	assert.ErrorIs(t, err, tensor.ErrReleased)

	foreign := alloc(t, other, 2, 2, 1, tensor.Float32)
	err = b.Synchronize(ctx, foreign)
	assert.ErrorIs(t, err, tensor.ErrForeign)
}

func TestDispatchContractViolations(t *testing.T) {
	ctx := context.Background()
	b := New()
	in := alloc(t, b, 4, 4, 2, tensor.Float32)
	out := alloc(t, b, 4, 4, 1, tensor.Float32)

	err := b.Dispatch(ctx, tensor.PipelineConvolve, in, out, &tensor.Constants{Weights: make([]tensor.Kernel, 3)})
	assert.ErrorIs(t, err, tensor.ErrDepthMismatch)

	err = b.Dispatch(ctx, tensor.PipelineCombine, in, alloc(t, b, 4, 4, 1, tensor.RGBA8), nil)
	assert.ErrorIs(t, err, tensor.ErrDepthMismatch)
}

func TestDispatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New()
	in := alloc(t, b, 2, 2, 1, tensor.Float32)
	out := alloc(t, b, 2, 2, 1, tensor.Float32)
	err := b.Dispatch(ctx, tensor.PipelineConvolve, in, out, &tensor.Constants{Weights: make([]tensor.Kernel, 1)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, b.Stats().Dispatches)
}

func TestNewWithConfig(t *testing.T) {
	b := NewWithConfig(parallel.Sequential())
	assert.Equal(t, "CPU", b.Name())
	assert.Equal(t, tensor.CPU, b.Device())
}
