package tensor

import "fmt"

// Stack is a host-side plane-stack: depth planes of identical size stored
// plane-major, so plane d occupies Data()[d*h*w : (d+1)*h*w].
type Stack struct {
	shape Shape
	data  []float32
}

// NewStack allocates a zero-filled stack.
func NewStack(width, height, depth int) (*Stack, error) {
	shape := NewShape(width, height, depth)
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Stack{shape: shape, data: make([]float32, shape.NumElements())}, nil
}

// StackFromSlice wraps data as a stack of the given shape. The slice is not copied.
func StackFromSlice(data []float32, shape Shape) (*Stack, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("shape %v requires %d samples, but got %d", shape, shape.NumElements(), len(data))
	}
	return &Stack{shape: shape.Clone(), data: data}, nil
}

// Shape returns the stack shape.
func (s *Stack) Shape() Shape { return s.shape }

// Depth returns the number of planes.
func (s *Stack) Depth() int { return s.shape.Depth() }

// Width returns the plane width.
func (s *Stack) Width() int { return s.shape.Width() }

// Height returns the plane height.
func (s *Stack) Height() int { return s.shape.Height() }

// Data returns the backing slice.
func (s *Stack) Data() []float32 { return s.data }

// Plane returns the samples of plane d, sharing the backing array.
func (s *Stack) Plane(d int) []float32 {
	n := s.shape.PlaneSize()
	return s.data[d*n : (d+1)*n]
}

// At returns the sample of plane d at (x, y).
func (s *Stack) At(d, x, y int) float32 {
	return s.data[d*s.shape.PlaneSize()+y*s.shape.Width()+x]
}

// Set stores v into plane d at (x, y).
func (s *Stack) Set(d, x, y int, v float32) {
	s.data[d*s.shape.PlaneSize()+y*s.shape.Width()+x] = v
}

// Fill sets every sample of plane d to v.
func (s *Stack) Fill(d int, v float32) {
	p := s.Plane(d)
	for i := range p {
		p[i] = v
	}
}

// Clone returns a deep copy of the stack.
func (s *Stack) Clone() *Stack {
	data := make([]float32, len(s.data))
	copy(data, s.data)
	return &Stack{shape: s.shape.Clone(), data: data}
}
