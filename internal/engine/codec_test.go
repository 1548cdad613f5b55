package engine

import (
	"context"
	"testing"

	"github.com/born-ml/superres/internal/backend/cpu"
	"github.com/born-ml/superres/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends() map[string]func() tensor.Backend {
	return map[string]func() tensor.Backend{
		"mock": func() tensor.Backend { return tensor.NewMockBackend() },
		"cpu":  func() tensor.Backend { return cpu.New() },
	}
}

func TestSplitCombineRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, newBackend := range backends() {
		t.Run(name, func(t *testing.T) {
			b := newBackend()
			const w, h = 16, 16
			pix := make([]byte, 4*w*h)
			for i := range pix {
				pix[i] = byte(i)
			}

			img, err := b.Allocate(w, h, 1, tensor.RGBA8)
			require.NoError(t, err)
			require.NoError(t, b.Upload(img, pix))

			planes, err := Split(ctx, b, img)
			require.NoError(t, err)
			assert.Equal(t, tensor.NewShape(w, h, 3), planes.Shape())

			// R, G and B land in planes 0, 1 and 2.
			data := read(t, b, planes)
			assert.InDelta(t, float32(pix[4*5+1])/255, data[w*h+5], 1e-7)

			out, err := Combine(ctx, b, planes)
			require.NoError(t, err)
			require.NoError(t, b.Synchronize(ctx, out))
			got, err := b.ReadRGBA(out)
			require.NoError(t, err)

			for i := 0; i < w*h; i++ {
				assert.Equal(t, pix[4*i:4*i+3], got[4*i:4*i+3], "pixel %d", i)
				assert.Equal(t, byte(255), got[4*i+3], "alpha %d", i)
			}
		})
	}
}

func TestCombineClamps(t *testing.T) {
	ctx := context.Background()
	for name, newBackend := range backends() {
		t.Run(name, func(t *testing.T) {
			b := newBackend()
			shape := tensor.NewShape(2, 1, 3)
			in := upload(t, b, shape, []float32{-1, 2, 0.5, 0.5, 1, 0})

			out, err := Combine(ctx, b, in)
			require.NoError(t, err)
			got, err := b.ReadRGBA(out)
			require.NoError(t, err)
			assert.Equal(t, []byte{0, 128, 255, 255, 255, 128, 0, 255}, got)
		})
	}
}

func TestCombineDepthMismatch(t *testing.T) {
	b := tensor.NewMockBackend()
	shape := tensor.NewShape(2, 2, 2)
	in := upload(t, b, shape, make([]float32, shape.NumElements()))

	_, err := Combine(context.Background(), b, in)
	assert.ErrorIs(t, err, tensor.ErrDepthMismatch)
	assert.Zero(t, b.CountCalls("dispatch:combine"))
}

func TestSplitRejectsFloatInput(t *testing.T) {
	b := tensor.NewMockBackend()
	shape := tensor.NewShape(2, 2, 1)
	in := upload(t, b, shape, make([]float32, shape.NumElements()))

	_, err := Split(context.Background(), b, in)
	assert.ErrorIs(t, err, tensor.ErrFormat)
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	b := cpu.New()
	pix := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	img, err := b.Allocate(2, 1, 1, tensor.RGBA8)
	require.NoError(t, err)
	require.NoError(t, b.Upload(img, pix))

	_, err = Split(context.Background(), b, img)
	require.NoError(t, err)
	got, err := b.ReadRGBA(img)
	require.NoError(t, err)
	assert.Equal(t, pix, got)
}
