// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host reference backend.
//
// The CPU backend implements the split, combine and convolve pipelines in
// pure Go and splits every dispatch across rows. It is always available and
// is the fallback when no GPU can be opened.
//
//	import (
//	    "github.com/born-ml/superres/backend/cpu"
//	    "github.com/born-ml/superres/engine"
//	)
//
//	e := engine.New(cpu.New(), engine.DefaultConfig())
package cpu

import (
	internalcpu "github.com/born-ml/superres/internal/backend/cpu"
	"github.com/born-ml/superres/internal/parallel"
	"github.com/born-ml/superres/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend using every core.
func New() *Backend {
	return internalcpu.New()
}

// NewSequential creates a CPU backend that computes each dispatch on the
// calling goroutine.
func NewSequential() *Backend {
	return internalcpu.NewWithConfig(parallel.Sequential())
}
