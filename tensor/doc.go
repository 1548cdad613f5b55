// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor defines the device-facing types of superres.
//
// # Overview
//
// A plane-stack is a set of equally sized single-channel float planes. On a
// device it lives in a Resource of format Float32 and depth equal to the
// number of planes; images live in RGBA8 resources of depth 1.
//
// A Backend owns resources and runs three pipelines over them:
//   - PipelineSplit: RGBA8 image to a 3-plane stack
//   - PipelineCombine: 3-plane stack to an opaque RGBA8 image
//   - PipelineConvolve: a whole stack to one plane, through one 3x3 kernel
//     per input plane plus a bias
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/superres/backend/cpu"
//	    "github.com/born-ml/superres/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    stack, err := backend.Allocate(64, 64, 3, tensor.Float32)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer stack.Release()
//	}
//
// # Errors
//
// Violated preconditions are reported as *ContractError wrapping one of the
// Err* sentinels; use errors.Is to classify them. Failures reported by the
// device are *DeviceError and end the run.
package tensor
