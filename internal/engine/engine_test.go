package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/born-ml/superres/internal/backend/cpu"
	"github.com/born-ml/superres/internal/nn"
	"github.com/born-ml/superres/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLayerOutputDepth(t *testing.T) {
	ctx := context.Background()
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	rng := rand.New(rand.NewSource(1))

	for _, tc := range []struct{ in, out int }{{1, 1}, {3, 4}, {4, 3}, {3, 32}} {
		shape := tensor.NewShape(5, 4, tc.in)
		in := upload(t, m, shape, ramp(shape.NumElements(), 0.1))
		out, err := e.RunLayer(ctx, in, randomLayer(t, rng, tc.in, tc.out, true, nn.DefaultActivation()))
		require.NoError(t, err)
		assert.Equal(t, tensor.NewShape(5, 4, tc.out), out.Shape())
	}
}

func TestRunLayerDispatchesOncePerOutputPlane(t *testing.T) {
	m := tensor.NewMockBackend()
	e := New(m, Config{Workers: 3})
	shape := tensor.NewShape(4, 4, 3)
	in := upload(t, m, shape, ramp(shape.NumElements(), 0.1))

	_, err := e.RunLayer(context.Background(), in, randomLayer(t, rand.New(rand.NewSource(2)), 3, 7, true, nn.Identity()))
	require.NoError(t, err)
	assert.Equal(t, 7, m.CountCalls("dispatch:convolve"))
	assert.Equal(t, 1, m.CountCalls("assemble"))
	// input + assembled output; per-plane results are released
	assert.Equal(t, int64(2), m.Stats().ActiveResources)
}

func TestRunLayerDepthMismatch(t *testing.T) {
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	shape := tensor.NewShape(4, 4, 2)
	in := upload(t, m, shape, make([]float32, shape.NumElements()))

	_, err := e.RunLayer(context.Background(), in, randomLayer(t, rand.New(rand.NewSource(3)), 3, 3, true, nn.Identity()))
	require.Error(t, err)
	assert.ErrorIs(t, err, tensor.ErrDepthMismatch)
	assert.True(t, tensor.IsContractViolation(err))
	assert.Zero(t, m.CountCalls("dispatch:convolve"))
}

func TestRunLayerZeroInputYieldsBias(t *testing.T) {
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	layer := randomLayer(t, rand.New(rand.NewSource(4)), 3, 4, true, nn.Identity())
	shape := tensor.NewShape(6, 3, 3)
	in := upload(t, m, shape, make([]float32, shape.NumElements()))

	out, err := e.RunLayer(context.Background(), in, layer)
	require.NoError(t, err)

	data := read(t, m, out)
	plane := shape.PlaneSize()
	for o := 0; o < 4; o++ {
		for _, v := range data[o*plane : (o+1)*plane] {
			assert.Equal(t, layer.Bias(o), v)
		}
	}
}

func TestRunLayerLinear(t *testing.T) {
	ctx := context.Background()
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	layer := randomLayer(t, rand.New(rand.NewSource(5)), 2, 3, false, nn.Identity())
	shape := tensor.NewShape(5, 5, 2)

	rng := rand.New(rand.NewSource(6))
	x := make([]float32, shape.NumElements())
	y := make([]float32, shape.NumElements())
	for i := range x {
		x[i] = rng.Float32()
		y[i] = rng.Float32()
	}
	const a, b = 2.5, -0.75
	mix := make([]float32, len(x))
	for i := range mix {
		mix[i] = a*x[i] + b*y[i]
	}

	run := func(data []float32) []float32 {
		out, err := e.RunLayer(ctx, upload(t, m, shape, data), layer)
		require.NoError(t, err)
		return read(t, m, out)
	}
	fx, fy, fmix := run(x), run(y), run(mix)
	for i := range fmix {
		assert.InDelta(t, a*fx[i]+b*fy[i], fmix[i], 1e-4, "sample %d", i)
	}
}

func TestRunLayerDeviceErrorIsFatal(t *testing.T) {
	for _, workers := range []int{1, 4} {
		m := tensor.NewMockBackend()
		boom := errors.New("device lost")
		m.FailOn = func(call string, n int) error {
			if call == "dispatch:convolve" && n == 2 {
				return boom
			}
			return nil
		}
		e := New(m, Config{Workers: workers})
		shape := tensor.NewShape(4, 4, 3)
		in := upload(t, m, shape, ramp(shape.NumElements(), 0.1))

		_, err := e.RunLayer(context.Background(), in, randomLayer(t, rand.New(rand.NewSource(7)), 3, 5, true, nn.Identity()))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		var devErr *tensor.DeviceError
		assert.ErrorAs(t, err, &devErr)
		assert.Zero(t, m.CountCalls("assemble"))
		assert.Equal(t, int64(1), m.Stats().ActiveResources, "workers=%d", workers)
	}
}

func TestRunLayerCancelled(t *testing.T) {
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	shape := tensor.NewShape(4, 4, 3)
	in := upload(t, m, shape, ramp(shape.NumElements(), 0.1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.RunLayer(ctx, in, randomLayer(t, rand.New(rand.NewSource(8)), 3, 3, true, nn.Identity()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.CountCalls("dispatch:convolve"))
}

func TestRunIdentityModelUniform(t *testing.T) {
	b := cpu.New()
	e := New(b, DefaultConfig())
	model, err := nn.NewModel(identityLayer(t, 3), identityLayer(t, 3))
	require.NoError(t, err)

	shape := tensor.NewShape(7, 5, 3)
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = 5
	}
	out, err := e.Run(context.Background(), model, upload(t, b, shape, data))
	require.NoError(t, err)
	for i, v := range read(t, b, out) {
		assert.Equal(t, float32(5), v, "sample %d", i)
	}
}

func TestRunOutputDepth(t *testing.T) {
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	rng := rand.New(rand.NewSource(9))
	model, err := nn.NewModel(randomLayer(t, rng, 3, 4, true, nn.Identity()))
	require.NoError(t, err)

	shape := tensor.NewShape(4, 4, 3)
	_, err = e.Run(context.Background(), model, upload(t, m, shape, make([]float32, shape.NumElements())))
	require.Error(t, err)
	assert.ErrorIs(t, err, tensor.ErrOutputDepth)
}

func TestRunInputDepthMismatch(t *testing.T) {
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	model, err := nn.NewModel(identityLayer(t, 3))
	require.NoError(t, err)

	shape := tensor.NewShape(4, 4, 1)
	_, err = e.Run(context.Background(), model, upload(t, m, shape, make([]float32, shape.NumElements())))
	assert.ErrorIs(t, err, tensor.ErrDepthMismatch)
}

func TestRunReleasesIntermediates(t *testing.T) {
	m := tensor.NewMockBackend()
	e := New(m, DefaultConfig())
	rng := rand.New(rand.NewSource(10))
	model, err := nn.NewModel(
		randomLayer(t, rng, 3, 8, true, nn.DefaultActivation()),
		randomLayer(t, rng, 8, 8, true, nn.DefaultActivation()),
		randomLayer(t, rng, 8, 3, true, nn.Identity()),
	)
	require.NoError(t, err)

	shape := tensor.NewShape(6, 6, 3)
	in := upload(t, m, shape, ramp(shape.NumElements(), 0.05))
	out, err := e.Run(context.Background(), model, in)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Shape().Depth())
	assert.Equal(t, int64(2), m.Stats().ActiveResources)
	assert.Equal(t, 19, m.CountCalls("dispatch:convolve"))
	assert.Equal(t, 3, m.CountCalls("assemble"))
}

func TestRunFailureReleasesIntermediates(t *testing.T) {
	m := tensor.NewMockBackend()
	m.FailOn = func(call string, n int) error {
		if call == "assemble" && n == 2 {
			return errors.New("out of memory")
		}
		return nil
	}
	e := New(m, Config{Workers: 2})
	rng := rand.New(rand.NewSource(11))
	model, err := nn.NewModel(
		randomLayer(t, rng, 3, 4, true, nn.Identity()),
		randomLayer(t, rng, 4, 3, true, nn.Identity()),
	)
	require.NoError(t, err)

	shape := tensor.NewShape(4, 4, 3)
	_, err = e.Run(context.Background(), model, upload(t, m, shape, ramp(shape.NumElements(), 0.1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layer 1")
	assert.Equal(t, int64(1), m.Stats().ActiveResources)
}

// TestRunDeterministic runs a 3 -> 4 -> 3 model on a 4x4 input on the CPU
// device with different worker counts and repeats.
func TestRunDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	model, err := nn.NewModel(
		randomLayer(t, rng, 3, 4, true, nn.DefaultActivation()),
		randomLayer(t, rng, 4, 3, true, nn.Identity()),
	)
	require.NoError(t, err)
	shape := tensor.NewShape(4, 4, 3)
	data := ramp(shape.NumElements(), 0.07)

	run := func(workers int) []float32 {
		b := cpu.New()
		out, err := New(b, Config{Workers: workers}).Run(context.Background(), model, upload(t, b, shape, data))
		require.NoError(t, err)
		require.Equal(t, 3, out.Shape().Depth())
		return read(t, b, out)
	}

	want := run(1)
	assert.Equal(t, want, run(1))
	assert.Equal(t, want, run(4))
}

func TestRunMatchesMock(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	model, err := nn.NewModel(
		randomLayer(t, rng, 3, 6, true, nn.DefaultActivation()),
		randomLayer(t, rng, 6, 3, true, nn.Identity()),
	)
	require.NoError(t, err)
	shape := tensor.NewShape(9, 7, 3)
	data := ramp(shape.NumElements(), 0.03)

	m := tensor.NewMockBackend()
	want, err := New(m, DefaultConfig()).Run(context.Background(), model, upload(t, m, shape, data))
	require.NoError(t, err)

	b := cpu.New()
	got, err := New(b, DefaultConfig()).Run(context.Background(), model, upload(t, b, shape, data))
	require.NoError(t, err)

	w, g := read(t, m, want), read(t, b, got)
	for i := range w {
		assert.InDelta(t, w[i], g[i], 1e-4, "sample %d", i)
	}
}

func TestNewClampsWorkers(t *testing.T) {
	e := New(tensor.NewMockBackend(), Config{Workers: 0})
	assert.Equal(t, 1, e.Config().Workers)
}
