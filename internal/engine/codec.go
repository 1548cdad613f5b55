package engine

import (
	"context"
	"fmt"

	"github.com/born-ml/superres/internal/tensor"
)

// Split converts an RGBA8 resource into a new depth-3 stack holding the R, G
// and B channels scaled to [0, 1]. Alpha is dropped.
func Split(ctx context.Context, b tensor.Backend, rgba tensor.Resource) (tensor.Resource, error) {
	if rgba.Format() != tensor.RGBA8 {
		return nil, tensor.Contract("split", tensor.ErrFormat, "input is %s", rgba.Format())
	}
	shape := rgba.Shape()
	out, err := b.Allocate(shape.Width(), shape.Height(), 3, tensor.Float32)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	if err := b.Dispatch(ctx, tensor.PipelineSplit, rgba, out, nil); err != nil {
		out.Release()
		return nil, fmt.Errorf("split: %w", err)
	}
	return out, nil
}

// Combine converts a depth-3 stack into a new opaque RGBA8 resource.
// Samples are clamped to [0, 1] before quantisation.
func Combine(ctx context.Context, b tensor.Backend, stack tensor.Resource) (tensor.Resource, error) {
	shape := stack.Shape()
	if shape.Depth() != 3 {
		return nil, tensor.Contract("combine", tensor.ErrDepthMismatch, "stack has %d planes, want 3", shape.Depth())
	}
	out, err := b.Allocate(shape.Width(), shape.Height(), 1, tensor.RGBA8)
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}
	if err := b.Dispatch(ctx, tensor.PipelineCombine, stack, out, nil); err != nil {
		out.Release()
		return nil, fmt.Errorf("combine: %w", err)
	}
	return out, nil
}
