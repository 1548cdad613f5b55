package nn

import (
	"fmt"

	"github.com/born-ml/superres/internal/tensor"
)

// Layer maps N input planes to M output planes:
//
//	out[m] = act(bias[m] + sum_n conv3x3(in[n], kernel[m][n]))
//
// A Layer is immutable after construction; accessors return copies or
// read-only views that callers must not modify.
type Layer struct {
	inputPlanes  int
	outputPlanes int
	kernels      []tensor.Kernel // [out][in], flattened row-major
	bias         []float32       // [out]
	activation   Activation
}

// NewLayer creates a layer from kernels indexed [output][input] and one bias
// per output plane.
func NewLayer(kernels [][]tensor.Kernel, bias []float32, act Activation) (*Layer, error) {
	const op = "new_layer"
	outputPlanes := len(kernels)
	if outputPlanes == 0 {
		return nil, tensor.Contract(op, tensor.ErrShapeMismatch, "layer has no output planes")
	}
	inputPlanes := len(kernels[0])
	if inputPlanes == 0 {
		return nil, tensor.Contract(op, tensor.ErrShapeMismatch, "layer has no input planes")
	}
	if len(bias) != outputPlanes {
		return nil, tensor.Contract(op, tensor.ErrShapeMismatch, "%d biases for %d output planes", len(bias), outputPlanes)
	}

	flat := make([]tensor.Kernel, 0, outputPlanes*inputPlanes)
	for o, row := range kernels {
		if len(row) != inputPlanes {
			return nil, tensor.Contract(op, tensor.ErrShapeMismatch,
				"output plane %d has %d kernels, expected %d", o, len(row), inputPlanes)
		}
		flat = append(flat, row...)
	}

	b := make([]float32, outputPlanes)
	copy(b, bias)

	return &Layer{
		inputPlanes:  inputPlanes,
		outputPlanes: outputPlanes,
		kernels:      flat,
		bias:         b,
		activation:   act,
	}, nil
}

// InputPlanes returns N.
func (l *Layer) InputPlanes() int { return l.inputPlanes }

// OutputPlanes returns M.
func (l *Layer) OutputPlanes() int { return l.outputPlanes }

// Kernel returns the kernel applied to input plane in for output plane out.
func (l *Layer) Kernel(out, in int) tensor.Kernel {
	return l.kernels[out*l.inputPlanes+in]
}

// Weights returns the N kernels feeding output plane out.
// The slice aliases the layer and must not be modified.
func (l *Layer) Weights(out int) []tensor.Kernel {
	return l.kernels[out*l.inputPlanes : (out+1)*l.inputPlanes]
}

// Bias returns the bias of output plane out.
func (l *Layer) Bias(out int) float32 { return l.bias[out] }

// Activation returns the layer's activation.
func (l *Layer) Activation() Activation { return l.activation }

// Constants returns the dispatch constants for output plane out.
func (l *Layer) Constants(out int) *tensor.Constants {
	return &tensor.Constants{
		Weights:       l.Weights(out),
		Bias:          l.bias[out],
		NegativeSlope: l.activation.NegativeSlope(),
	}
}

// WithActivation returns a copy of the layer using act.
func (l *Layer) WithActivation(act Activation) *Layer {
	c := *l
	c.activation = act
	return &c
}

// NumParameters returns the number of weights and biases.
func (l *Layer) NumParameters() int {
	return len(l.kernels)*len(tensor.Kernel{}) + len(l.bias)
}

func (l *Layer) String() string {
	return fmt.Sprintf("Conv3x3(%d -> %d, %s)", l.inputPlanes, l.outputPlanes, l.activation)
}
