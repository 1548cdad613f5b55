// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn describes stacked 3x3 convolution models.
//
// A Model is an immutable, ordered list of layers. Layer k maps N planes to
// M planes with M*N kernels and M biases, and layer k+1 must consume exactly
// the M planes layer k produces.
//
// Models are usually read from disk with the loader package:
//
//	model, err := loader.Load("scale2.0x_model.json")
//
// or built from descriptions:
//
//	model, err := nn.BuildModel(descs, nn.DefaultActivation())
package nn

import "github.com/born-ml/superres/internal/nn"

// Layer is one stage of a model.
type Layer = nn.Layer

// Model is an ordered chain of layers.
type Model = nn.Model

// LayerDesc is the external description of a layer.
type LayerDesc = nn.LayerDesc

// Activation is applied after the bias inside the device kernel.
type Activation = nn.Activation

// Identity returns the activation that leaves values unchanged.
func Identity() Activation { return nn.Identity() }

// LeakyReLU returns max(x, 0) + slope*min(x, 0).
func LeakyReLU(slope float32) Activation { return nn.LeakyReLU(slope) }

// DefaultActivation returns LeakyReLU(0.1).
func DefaultActivation() Activation { return nn.DefaultActivation() }

// ParseActivation parses "identity", "relu", "leaky" or "leaky:<slope>".
func ParseActivation(s string) (Activation, error) { return nn.ParseActivation(s) }

// NewLayer creates a layer from kernels indexed [output][input].
func NewLayer(kernels [][]Kernel, bias []float32, act Activation) (*Layer, error) {
	return nn.NewLayer(kernels, bias, act)
}

// NewModel chains layers into a model.
func NewModel(layers ...*Layer) (*Model, error) { return nn.NewModel(layers...) }

// BuildLayer validates a description and turns it into a Layer.
func BuildLayer(desc LayerDesc, act Activation) (*Layer, error) { return nn.BuildLayer(desc, act) }

// BuildModel builds and chains every described layer.
func BuildModel(descs []LayerDesc, act Activation) (*Model, error) { return nn.BuildModel(descs, act) }
