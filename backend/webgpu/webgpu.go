// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU compute backend.
//
// The backend runs on the go-webgpu bindings, which currently load
// wgpu_native on Windows only; elsewhere Open reports
// tensor.ErrUnavailable.
//
// Example:
//
//	backend, err := webgpu.Open()
//	if err != nil {
//	    backend = cpu.New()
//	}
//	defer backend.Release()
package webgpu

import (
	internalwebgpu "github.com/born-ml/superres/internal/backend/webgpu"
	"github.com/born-ml/superres/tensor"
)

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

// Open initializes a WebGPU device and returns it as a tensor.Backend.
// Call Release when done to free GPU resources.
func Open() (tensor.Backend, error) {
	return internalwebgpu.Open()
}
