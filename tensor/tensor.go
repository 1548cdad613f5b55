// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/superres/internal/tensor"

// Shape is [depth, height, width].
type Shape = tensor.Shape

// Kernel is a row-major 3x3 kernel.
type Kernel = tensor.Kernel

// Format is the sample format of a resource.
type Format = tensor.Format

// Supported formats.
const (
	RGBA8   = tensor.RGBA8
	Float32 = tensor.Float32
)

// Device identifies a compute device.
type Device = tensor.Device

// Compute devices.
const (
	CPU    = tensor.CPU
	WebGPU = tensor.WebGPU
)

// Pipeline selects a device kernel.
type Pipeline = tensor.Pipeline

// Pipelines.
const (
	PipelineSplit    = tensor.PipelineSplit
	PipelineCombine  = tensor.PipelineCombine
	PipelineConvolve = tensor.PipelineConvolve
)

// Resource is a device-resident plane-stack or image.
type Resource = tensor.Resource

// Constants are the values bound next to a convolve dispatch.
type Constants = tensor.Constants

// Backend is the resource orchestrator every compute device implements.
//
// Implementations:
//   - backend/cpu: host reference device
//   - backend/webgpu: WebGPU compute device
type Backend = tensor.Backend

// Stats reports resource and submission counters of a backend.
type Stats = tensor.Stats

// Stack is a host-side plane-stack.
type Stack = tensor.Stack

// MockBackend is a recording host backend for tests.
type MockBackend = tensor.MockBackend

// ContractError reports a violated precondition.
type ContractError = tensor.ContractError

// DeviceError reports a failure raised by the device.
type DeviceError = tensor.DeviceError

// Contract violations.
var (
	ErrDepthMismatch = tensor.ErrDepthMismatch
	ErrKernelSize    = tensor.ErrKernelSize
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrOutputDepth   = tensor.ErrOutputDepth
	ErrFormat        = tensor.ErrFormat
	ErrReleased      = tensor.ErrReleased
	ErrForeign       = tensor.ErrForeign
	ErrUnavailable   = tensor.ErrUnavailable
)

// NewShape returns the shape of depth planes of width x height.
func NewShape(width, height, depth int) Shape {
	return tensor.NewShape(width, height, depth)
}

// NewStack allocates a zero-filled host stack.
func NewStack(width, height, depth int) (*Stack, error) {
	return tensor.NewStack(width, height, depth)
}

// IdentityKernel returns the kernel with a single 1 at the centre.
func IdentityKernel() Kernel {
	return tensor.IdentityKernel()
}

// NewMockBackend creates a MockBackend.
func NewMockBackend() *MockBackend {
	return tensor.NewMockBackend()
}

// IsContractViolation reports whether err is a *ContractError.
func IsContractViolation(err error) bool {
	return tensor.IsContractViolation(err)
}
