// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package engine runs superres models on a backend.
//
// Example:
//
//	model, err := loader.Load("scale2.0x_model.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	up, err := engine.NewUpscaler(engine.New(cpu.New(), engine.DefaultConfig()), model)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := up.Upscale(ctx, img)
package engine

import (
	"context"

	"github.com/born-ml/superres/internal/engine"
	"github.com/born-ml/superres/internal/nn"
	"github.com/born-ml/superres/tensor"
)

// Scale is the resize factor applied by Upscale.
const Scale = engine.Scale

// Engine evaluates models layer by layer.
type Engine = engine.Engine

// Config controls dispatch scheduling.
type Config = engine.Config

// Upscaler resizes and refines images.
type Upscaler = engine.Upscaler

// DefaultConfig returns one worker per CPU.
func DefaultConfig() Config { return engine.DefaultConfig() }

// New creates an Engine on backend.
func New(backend tensor.Backend, cfg Config) *Engine { return engine.New(backend, cfg) }

// NewUpscaler pairs an engine with a 3 -> 3 plane model.
func NewUpscaler(e *Engine, model *nn.Model) (*Upscaler, error) { return engine.NewUpscaler(e, model) }

// Split converts an RGBA8 resource into a 3-plane stack.
func Split(ctx context.Context, b tensor.Backend, rgba tensor.Resource) (tensor.Resource, error) {
	return engine.Split(ctx, b, rgba)
}

// Combine converts a 3-plane stack into an RGBA8 resource.
func Combine(ctx context.Context, b tensor.Backend, stack tensor.Resource) (tensor.Resource, error) {
	return engine.Combine(ctx, b, stack)
}

// UploadStack copies a host stack into a new Float32 resource on b.
func UploadStack(b tensor.Backend, s *tensor.Stack) (tensor.Resource, error) {
	return engine.UploadStack(b, s)
}

// ReadStack copies a Float32 resource back into a host stack.
func ReadStack(b tensor.Backend, r tensor.Resource) (*tensor.Stack, error) {
	return engine.ReadStack(b, r)
}
