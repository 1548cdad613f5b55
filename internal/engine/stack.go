package engine

import (
	"fmt"

	"github.com/born-ml/superres/internal/tensor"
)

// UploadStack allocates a Float32 resource shaped like s and copies s into it.
func UploadStack(b tensor.Backend, s *tensor.Stack) (tensor.Resource, error) {
	r, err := b.Allocate(s.Width(), s.Height(), s.Depth(), tensor.Float32)
	if err != nil {
		return nil, fmt.Errorf("upload stack: %w", err)
	}
	if err := b.WriteFloat32(r, s.Data()); err != nil {
		r.Release()
		return nil, fmt.Errorf("upload stack: %w", err)
	}
	return r, nil
}

// ReadStack copies a Float32 resource back to the host.
func ReadStack(b tensor.Backend, r tensor.Resource) (*tensor.Stack, error) {
	data, err := b.ReadFloat32(r)
	if err != nil {
		return nil, fmt.Errorf("read stack: %w", err)
	}
	return tensor.StackFromSlice(data, r.Shape())
}
