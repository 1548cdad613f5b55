package tensor

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a host-memory backend for testing.
// It implements every pipeline naively, records each call and can be told
// to fail a given call to exercise error paths.
type MockBackend struct {
	StatsTracker

	mu    sync.Mutex
	calls []string

	// FailOn, when set, is consulted before every Dispatch, Assemble and
	// Synchronize; a non-nil result is returned as a DeviceError.
	FailOn func(call string, n int) error
}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

type mockResource struct {
	shape    Shape
	format   Format
	pix      []byte
	data     []float32
	owner    *MockBackend
	released bool
}

func (r *mockResource) Shape() Shape   { return r.shape }
func (r *mockResource) Format() Format { return r.format }

func (r *mockResource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.owner.TrackRelease(uint64(r.shape.NumElements() * r.format.Size()))
}

// Name returns the backend name.
func (m *MockBackend) Name() string { return "mock" }

// Device returns the device type.
func (m *MockBackend) Device() Device { return CPU }

// Calls returns the recorded call log, e.g. "dispatch:convolve".
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CountCalls returns how many recorded calls equal call.
func (m *MockBackend) CountCalls(call string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (m *MockBackend) record(call string) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	m.mu.Unlock()

	if m.FailOn != nil {
		if err := m.FailOn(call, n); err != nil {
			return &DeviceError{Op: call, Err: err}
		}
	}
	return nil
}

func (m *MockBackend) resource(r Resource) (*mockResource, error) {
	mr, ok := r.(*mockResource)
	if !ok || mr.owner != m {
		return nil, ErrForeign
	}
	if mr.released {
		return nil, ErrReleased
	}
	return mr, nil
}

// Allocate creates a zero-filled host resource.
func (m *MockBackend) Allocate(width, height, depth int, format Format) (Resource, error) {
	shape := NewShape(width, height, depth)
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	r := &mockResource{shape: shape, format: format, owner: m}
	switch format {
	case RGBA8:
		r.pix = make([]byte, 4*shape.NumElements())
	case Float32:
		r.data = make([]float32, shape.NumElements())
	default:
		return nil, ErrFormat
	}
	m.TrackAllocation(uint64(shape.NumElements() * format.Size()))
	return r, nil
}

// Upload copies pixels into an RGBA8 resource.
func (m *MockBackend) Upload(dst Resource, pix []byte) error {
	r, err := m.resource(dst)
	if err != nil {
		return err
	}
	if r.format != RGBA8 || len(pix) != len(r.pix) {
		return fmt.Errorf("upload: %w: %d bytes into %s %v", ErrShapeMismatch, len(pix), r.format, r.shape)
	}
	copy(r.pix, pix)
	return nil
}

// WriteFloat32 copies samples into a Float32 resource.
func (m *MockBackend) WriteFloat32(dst Resource, data []float32) error {
	r, err := m.resource(dst)
	if err != nil {
		return err
	}
	if r.format != Float32 || len(data) != len(r.data) {
		return fmt.Errorf("write: %w: %d samples into %s %v", ErrShapeMismatch, len(data), r.format, r.shape)
	}
	copy(r.data, data)
	return nil
}

// Dispatch runs pipeline p with straightforward loops.
func (m *MockBackend) Dispatch(ctx context.Context, p Pipeline, in, out Resource, c *Constants) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := m.resource(in)
	if err != nil {
		return err
	}
	dst, err := m.resource(out)
	if err != nil {
		return err
	}
	if err := CheckDispatch(p, in, out, c); err != nil {
		return err
	}
	if err := m.record("dispatch:" + p.String()); err != nil {
		return err
	}
	m.TrackSubmission(true)

	w, h := src.shape.Width(), src.shape.Height()
	n := w * h
	switch p {
	case PipelineSplit:
		for i := 0; i < n; i++ {
			for ch := 0; ch < 3; ch++ {
				dst.data[ch*n+i] = float32(src.pix[4*i+ch]) / 255
			}
		}
	case PipelineCombine:
		for i := 0; i < n; i++ {
			for ch := 0; ch < 3; ch++ {
				v := math.Max(0, math.Min(1, float64(src.data[ch*n+i])))
				dst.pix[4*i+ch] = uint8(math.Round(v * 255))
			}
			dst.pix[4*i+3] = 255
		}
	case PipelineConvolve:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sum := c.Bias
				for d, k := range c.Weights {
					for ky := 0; ky < 3; ky++ {
						for kx := 0; kx < 3; kx++ {
							sx, sy := x+kx-1, y+ky-1
							if sx < 0 || sy < 0 || sx >= w || sy >= h {
								continue
							}
							sum += src.data[d*n+sy*w+sx] * k.At(ky, kx)
						}
					}
				}
				if sum < 0 {
					sum *= c.NegativeSlope
				}
				dst.data[y*w+x] = sum
			}
		}
	}
	return nil
}

// Assemble copies planes into a new stack.
func (m *MockBackend) Assemble(ctx context.Context, planes []Resource) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := CheckAssemble(planes); err != nil {
		return nil, err
	}
	srcs := make([]*mockResource, len(planes))
	for i, p := range planes {
		r, err := m.resource(p)
		if err != nil {
			return nil, err
		}
		srcs[i] = r
	}
	if err := m.record("assemble"); err != nil {
		return nil, err
	}
	shape := planes[0].Shape()
	out, err := m.Allocate(shape.Width(), shape.Height(), len(planes), Float32)
	if err != nil {
		return nil, err
	}
	dst := out.(*mockResource)
	n := shape.PlaneSize()
	for i, r := range srcs {
		copy(dst.data[i*n:(i+1)*n], r.data)
	}
	m.TrackSubmission(false)
	return out, nil
}

// Synchronize records the call; host memory is always coherent.
func (m *MockBackend) Synchronize(ctx context.Context, r Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.resource(r); err != nil {
		return err
	}
	if err := m.record("synchronize"); err != nil {
		return err
	}
	m.TrackSubmission(false)
	return nil
}

// ReadRGBA returns a copy of the pixels of r.
func (m *MockBackend) ReadRGBA(r Resource) ([]byte, error) {
	mr, err := m.resource(r)
	if err != nil {
		return nil, err
	}
	if mr.format != RGBA8 {
		return nil, ErrFormat
	}
	out := make([]byte, len(mr.pix))
	copy(out, mr.pix)
	return out, nil
}

// ReadFloat32 returns a copy of the samples of r.
func (m *MockBackend) ReadFloat32(r Resource) ([]float32, error) {
	mr, err := m.resource(r)
	if err != nil {
		return nil, err
	}
	if mr.format != Float32 {
		return nil, ErrFormat
	}
	out := make([]float32, len(mr.data))
	copy(out, mr.data)
	return out, nil
}

// Stats returns the resource counters.
func (m *MockBackend) Stats() Stats { return m.Snapshot() }

// Release is a no-op for host memory.
func (m *MockBackend) Release() {}
