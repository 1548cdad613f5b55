// Package tensor provides the plane-stack types shared by the inference
// engine and its compute backends.
package tensor

// Format is the sample format of a device resource.
type Format int

// Supported resource formats.
const (
	// RGBA8 is pixel-interleaved 8-bit RGBA, normalized to [0, 1] on read.
	RGBA8 Format = iota
	// Float32 is one 32-bit float sample per plane position.
	Float32
)

// Size returns the byte size of one sample (one pixel for RGBA8).
func (f Format) Size() int {
	switch f {
	case RGBA8, Float32:
		return 4
	default:
		panic("unknown format")
	}
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case RGBA8:
		return "rgba8"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// Device identifies where a backend executes.
type Device int

// Available devices.
const (
	CPU Device = iota
	WebGPU
)

func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case WebGPU:
		return "webgpu"
	default:
		return "unknown"
	}
}
