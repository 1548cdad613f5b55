package tensor

import "fmt"

// Shape describes a plane-stack as [depth, height, width].
type Shape []int

// NewShape returns the shape of a stack of depth planes of width x height samples.
func NewShape(width, height, depth int) Shape {
	return Shape{depth, height, width}
}

// Depth returns the number of planes.
func (s Shape) Depth() int { return s[0] }

// Height returns the plane height in samples.
func (s Shape) Height() int { return s[1] }

// Width returns the plane width in samples.
func (s Shape) Width() int { return s[2] }

// PlaneSize returns the number of samples in one plane.
func (s Shape) PlaneSize() int { return s[1] * s[2] }

// NumElements returns the total number of samples across all planes.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape has three positive dimensions.
func (s Shape) Validate() error {
	if len(s) != 3 {
		return fmt.Errorf("shape must have 3 dimensions [depth, height, width], got %d", len(s))
	}
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// SamePlane reports whether both shapes have the same width and height.
func (s Shape) SamePlane(other Shape) bool {
	return s.Height() == other.Height() && s.Width() == other.Width()
}

// WithDepth returns a copy of the shape with a different depth.
func (s Shape) WithDepth(depth int) Shape {
	return Shape{depth, s[1], s[2]}
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

func (s Shape) String() string {
	if len(s) != 3 {
		return fmt.Sprintf("%v", []int(s))
	}
	return fmt.Sprintf("%dx%dx%d", s.Width(), s.Height(), s.Depth())
}
