package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/superres/internal/tensor"
)

// Model is an ordered, immutable sequence of layers. Each layer's output
// planes become the next layer's input planes.
type Model struct {
	layers []*Layer
}

// NewModel checks that adjacent layers chain (N of layer k == M of layer k-1)
// and returns the model. The first layer's N and the last layer's M are
// checked by the engine against the actual plane-stacks.
func NewModel(layers ...*Layer) (*Model, error) {
	if len(layers) == 0 {
		return nil, tensor.Contract("new_model", tensor.ErrShapeMismatch, "model has no layers")
	}
	for k := 1; k < len(layers); k++ {
		prev, cur := layers[k-1], layers[k]
		if cur.InputPlanes() != prev.OutputPlanes() {
			return nil, tensor.Contract("new_model", tensor.ErrDepthMismatch,
				"layer %d takes %d planes but layer %d produces %d", k, cur.InputPlanes(), k-1, prev.OutputPlanes())
		}
	}
	ls := make([]*Layer, len(layers))
	copy(ls, layers)
	return &Model{layers: ls}, nil
}

// Len returns the number of layers.
func (m *Model) Len() int { return len(m.layers) }

// Layer returns layer k.
func (m *Model) Layer(k int) *Layer { return m.layers[k] }

// Layers returns a copy of the layer list.
func (m *Model) Layers() []*Layer {
	ls := make([]*Layer, len(m.layers))
	copy(ls, m.layers)
	return ls
}

// InputPlanes returns the plane count the first layer consumes.
func (m *Model) InputPlanes() int { return m.layers[0].InputPlanes() }

// OutputPlanes returns the plane count the last layer produces.
func (m *Model) OutputPlanes() int { return m.layers[len(m.layers)-1].OutputPlanes() }

// NumParameters returns the total number of weights and biases.
func (m *Model) NumParameters() int {
	n := 0
	for _, l := range m.layers {
		n += l.NumParameters()
	}
	return n
}

func (m *Model) String() string {
	var sb strings.Builder
	sb.WriteString("Model(\n")
	for i, l := range m.layers {
		fmt.Fprintf(&sb, "  (%d): %s\n", i, l)
	}
	sb.WriteString(")")
	return sb.String()
}
