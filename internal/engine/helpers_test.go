package engine

import (
	"math/rand"
	"testing"

	"github.com/born-ml/superres/internal/nn"
	"github.com/born-ml/superres/internal/tensor"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, b tensor.Backend, shape tensor.Shape, data []float32) tensor.Resource {
	t.Helper()
	r, err := b.Allocate(shape.Width(), shape.Height(), shape.Depth(), tensor.Float32)
	require.NoError(t, err)
	require.NoError(t, b.WriteFloat32(r, data))
	return r
}

func read(t *testing.T, b tensor.Backend, r tensor.Resource) []float32 {
	t.Helper()
	data, err := b.ReadFloat32(r)
	require.NoError(t, err)
	return data
}

// randomLayer builds an in -> out layer with kernels and biases drawn from rng.
func randomLayer(t *testing.T, rng *rand.Rand, in, out int, withBias bool, act nn.Activation) *nn.Layer {
	t.Helper()
	kernels := make([][]tensor.Kernel, out)
	bias := make([]float32, out)
	for o := range kernels {
		kernels[o] = make([]tensor.Kernel, in)
		for i := range kernels[o] {
			for j := range kernels[o][i] {
				kernels[o][i][j] = rng.Float32()*2 - 1
			}
		}
		if withBias {
			bias[o] = rng.Float32() - 0.5
		}
	}
	layer, err := nn.NewLayer(kernels, bias, act)
	require.NoError(t, err)
	return layer
}

// identityLayer passes n planes through unchanged.
func identityLayer(t *testing.T, n int) *nn.Layer {
	t.Helper()
	kernels := make([][]tensor.Kernel, n)
	for o := range kernels {
		kernels[o] = make([]tensor.Kernel, n)
		kernels[o][o] = tensor.IdentityKernel()
	}
	layer, err := nn.NewLayer(kernels, make([]float32, n), nn.Identity())
	require.NoError(t, err)
	return layer
}

func ramp(n int, scale float32) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i%11)*scale - 0.3
	}
	return data
}
