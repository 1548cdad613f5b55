// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loader reads and writes superres model files.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/superres/loader"
//	    "github.com/born-ml/superres/nn"
//	)
//
//	model, err := loader.Load("scale2.0x_model.json", loader.WithActivation(nn.DefaultActivation()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model)
package loader

import (
	"io"

	"github.com/born-ml/superres/internal/loader"
	"github.com/born-ml/superres/internal/nn"
)

// ModelFormat represents the container of a model file.
type ModelFormat = loader.ModelFormat

// Supported model formats.
const (
	FormatUnknown = loader.FormatUnknown
	FormatJSON    = loader.FormatJSON
	FormatZstd    = loader.FormatZstd
)

// Option configures loading and saving.
type Option = loader.Option

// ErrUnknownFormat is returned when a stream is neither JSON nor zstd.
var ErrUnknownFormat = loader.ErrUnknownFormat

// WithActivation sets the activation assigned to every layer.
func WithActivation(act nn.Activation) Option { return loader.WithActivation(act) }

// WithFormat sets the container Encode writes.
func WithFormat(f ModelFormat) Option { return loader.WithFormat(f) }

// Load reads a model file, decompressing it if needed.
func Load(path string, opts ...Option) (*nn.Model, error) { return loader.Load(path, opts...) }

// Decode reads a model from r.
func Decode(r io.Reader, opts ...Option) (*nn.Model, error) { return loader.Decode(r, opts...) }

// Save writes m to path; .zst and .zstd paths are compressed.
func Save(path string, m *nn.Model, opts ...Option) error { return loader.Save(path, m, opts...) }

// Encode writes m to w.
func Encode(w io.Writer, m *nn.Model, opts ...Option) error { return loader.Encode(w, m, opts...) }
