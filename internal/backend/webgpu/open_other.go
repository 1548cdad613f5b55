//go:build !windows

package webgpu

import (
	"fmt"

	"github.com/born-ml/superres/internal/tensor"
)

// IsAvailable reports false: the WebGPU device is only built for Windows.
func IsAvailable() bool { return false }

// Open always fails on this platform.
func Open() (tensor.Backend, error) {
	return nil, fmt.Errorf("webgpu: %w on this platform", tensor.ErrUnavailable)
}
