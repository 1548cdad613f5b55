package nn

import (
	"testing"

	"github.com/born-ml/superres/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityLayer(t *testing.T, planes int) *Layer {
	t.Helper()
	kernels := make([][]tensor.Kernel, planes)
	for o := range kernels {
		kernels[o] = make([]tensor.Kernel, planes)
		kernels[o][o] = tensor.IdentityKernel()
	}
	l, err := NewLayer(kernels, make([]float32, planes), Identity())
	require.NoError(t, err)
	return l
}

func TestNewLayerValidation(t *testing.T) {
	_, err := NewLayer(nil, nil, Identity())
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = NewLayer([][]tensor.Kernel{{}}, []float32{0}, Identity())
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = NewLayer([][]tensor.Kernel{make([]tensor.Kernel, 2), make([]tensor.Kernel, 1)}, []float32{0, 0}, Identity())
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestModelChaining(t *testing.T) {
	m, err := NewModel(identityLayer(t, 3), identityLayer(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2*(9*9+3), m.NumParameters())

	_, err = NewModel()
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	_, err = NewModel(identityLayer(t, 3), identityLayer(t, 2))
	assert.ErrorIs(t, err, tensor.ErrDepthMismatch)
}

func TestModelIsImmutable(t *testing.T) {
	layers := []*Layer{identityLayer(t, 3)}
	m, err := NewModel(layers...)
	require.NoError(t, err)

	layers[0] = identityLayer(t, 1)
	assert.Equal(t, 3, m.Layer(0).InputPlanes())

	ls := m.Layers()
	ls[0] = nil
	assert.NotNil(t, m.Layer(0))

	l := m.Layer(0).WithActivation(DefaultActivation())
	assert.True(t, m.Layer(0).Activation().IsIdentity())
	assert.False(t, l.Activation().IsIdentity())
}
