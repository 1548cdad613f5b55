package tensor

import (
	"errors"
	"fmt"
)

// Contract violations. They indicate a malformed model or a pipeline wired
// with the wrong plane counts, and are never retried.
var (
	ErrDepthMismatch = errors.New("plane-stack depth mismatch")
	ErrKernelSize    = errors.New("unsupported kernel size")
	ErrShapeMismatch = errors.New("declared shape does not match data")
	ErrOutputDepth   = errors.New("model output must have 3 planes")
	ErrFormat        = errors.New("unexpected resource format")
	ErrReleased      = errors.New("resource already released")
	ErrForeign       = errors.New("resource belongs to another backend")
)

// ErrUnavailable is returned when a compute device cannot be opened.
var ErrUnavailable = errors.New("compute device not available")

// ContractError describes a violated precondition or postcondition.
type ContractError struct {
	Op      string // Operation that detected the violation (e.g. "run_layer")
	Details string // What was expected and what was found
	Err     error  // One of the sentinel errors above
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Details)
}

// Unwrap returns the sentinel error.
func (e *ContractError) Unwrap() error { return e.Err }

// Contract builds a ContractError for op wrapping sentinel.
func Contract(op string, sentinel error, format string, args ...any) error {
	return &ContractError{Op: op, Details: fmt.Sprintf(format, args...), Err: sentinel}
}

// DeviceError reports a failure raised by the compute device itself.
type DeviceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying device error.
func (e *DeviceError) Unwrap() error { return e.Err }

// IsContractViolation reports whether err is (or wraps) a ContractError.
func IsContractViolation(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}
