// Package engine runs stacked 3x3 convolution models over device-resident
// plane-stacks.
//
// An Engine drives a tensor.Backend: each layer fans out into one convolve
// dispatch per output plane, the resulting planes are assembled into the next
// stack, and the next layer starts only after the whole stack is ready.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/born-ml/superres/internal/logging"
	"github.com/born-ml/superres/internal/nn"
	"github.com/born-ml/superres/internal/parallel"
	"github.com/born-ml/superres/internal/tensor"
)

// Config controls how an Engine schedules dispatches.
type Config struct {
	// Workers bounds the output planes of one layer computed concurrently.
	// 1 reproduces the serial order.
	Workers int
}

// DefaultConfig returns one worker per CPU.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU()}
}

// Engine evaluates models on a backend.
type Engine struct {
	backend tensor.Backend
	cfg     Config
}

// New creates an Engine. Workers below 1 are treated as 1.
func New(backend tensor.Backend, cfg Config) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{backend: backend, cfg: cfg}
}

// Backend returns the device the engine dispatches to.
func (e *Engine) Backend() tensor.Backend { return e.backend }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// RunLayer computes out[m] = act(bias[m] + sum_n conv3x3(in[n], K[m][n])) for
// every output plane m and returns the assembled stack of depth M.
//
// The input stack is only read; the caller keeps ownership of it.
func (e *Engine) RunLayer(ctx context.Context, in tensor.Resource, layer *nn.Layer) (tensor.Resource, error) {
	shape := in.Shape()
	if shape.Depth() != layer.InputPlanes() {
		return nil, tensor.Contract("run_layer", tensor.ErrDepthMismatch,
			"input has %d planes, layer expects %d", shape.Depth(), layer.InputPlanes())
	}

	planes := make([]tensor.Resource, layer.OutputPlanes())
	defer func() {
		for _, p := range planes {
			if p != nil {
				p.Release()
			}
		}
	}()

	logging.Logger().Debug("run layer",
		"layer", layer.String(), "width", shape.Width(), "height", shape.Height())

	err := parallel.Run(ctx, len(planes), e.cfg.Workers, func(ctx context.Context, m int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := e.backend.Allocate(shape.Width(), shape.Height(), 1, tensor.Float32)
		if err != nil {
			return fmt.Errorf("output plane %d: %w", m, err)
		}
		planes[m] = out
		if err := e.backend.Dispatch(ctx, tensor.PipelineConvolve, in, out, layer.Constants(m)); err != nil {
			return fmt.Errorf("output plane %d: %w", m, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.backend.Assemble(ctx, planes)
}

// Run folds RunLayer over the layers of model. Every layer completes before
// the next begins; intermediate stacks are released as soon as they are
// consumed. The result always has depth 3.
func (e *Engine) Run(ctx context.Context, model *nn.Model, in tensor.Resource) (tensor.Resource, error) {
	if model.OutputPlanes() != 3 {
		return nil, tensor.Contract("run", tensor.ErrOutputDepth,
			"model produces %d planes, want 3", model.OutputPlanes())
	}

	cur := in
	release := func() {
		if cur != in {
			cur.Release()
		}
	}

	for k, layer := range model.Layers() {
		next, err := e.RunLayer(ctx, cur, layer)
		if err != nil {
			release()
			return nil, fmt.Errorf("layer %d: %w", k, err)
		}
		release()
		cur = next
	}

	if cur.Shape().Depth() != 3 {
		release()
		return nil, tensor.Contract("run", tensor.ErrOutputDepth, "result has %d planes", cur.Shape().Depth())
	}
	return cur, nil
}
