// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import "github.com/born-ml/superres/internal/tensor"

// Kernel is a row-major 3x3 kernel.
type Kernel = tensor.Kernel
