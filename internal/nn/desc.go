package nn

import "github.com/born-ml/superres/internal/tensor"

// LayerDesc is the external description of one layer, as stored in waifu2x
// model files.
type LayerDesc struct {
	KW           int             `json:"kW"`
	KH           int             `json:"kH"`
	NInputPlane  int             `json:"nInputPlane"`
	NOutputPlane int             `json:"nOutputPlane"`
	Bias         []float32       `json:"bias"`
	Weight       [][][][]float32 `json:"weight"` // [out][in][ky][kx]
}

// BuildLayer validates a description and reshapes it into a Layer.
// The kernel must be 3x3 and every dimension of Weight and Bias must match
// the declared plane counts.
func BuildLayer(desc LayerDesc, act Activation) (*Layer, error) {
	const op = "build_layer"
	if desc.KW != tensor.KernelSize || desc.KH != tensor.KernelSize {
		return nil, tensor.Contract(op, tensor.ErrKernelSize, "got %dx%d, want 3x3", desc.KW, desc.KH)
	}
	if desc.NInputPlane <= 0 || desc.NOutputPlane <= 0 {
		return nil, tensor.Contract(op, tensor.ErrShapeMismatch,
			"plane counts must be positive, got in=%d out=%d", desc.NInputPlane, desc.NOutputPlane)
	}
	if len(desc.Bias) != desc.NOutputPlane {
		return nil, tensor.Contract(op, tensor.ErrShapeMismatch,
			"bias has %d entries, nOutputPlane is %d", len(desc.Bias), desc.NOutputPlane)
	}
	if len(desc.Weight) != desc.NOutputPlane {
		return nil, tensor.Contract(op, tensor.ErrShapeMismatch,
			"weight has %d output planes, nOutputPlane is %d", len(desc.Weight), desc.NOutputPlane)
	}

	kernels := make([][]tensor.Kernel, desc.NOutputPlane)
	for o, perInput := range desc.Weight {
		if len(perInput) != desc.NInputPlane {
			return nil, tensor.Contract(op, tensor.ErrShapeMismatch,
				"weight[%d] has %d input planes, nInputPlane is %d", o, len(perInput), desc.NInputPlane)
		}
		kernels[o] = make([]tensor.Kernel, desc.NInputPlane)
		for i, rows := range perInput {
			k, err := kernelFromRows(rows)
			if err != nil {
				return nil, tensor.Contract(op, tensor.ErrShapeMismatch, "weight[%d][%d]: %v", o, i, err)
			}
			kernels[o][i] = k
		}
	}
	return NewLayer(kernels, desc.Bias, act)
}

// BuildModel builds every layer and chains them into a Model.
func BuildModel(descs []LayerDesc, act Activation) (*Model, error) {
	layers := make([]*Layer, len(descs))
	for i, d := range descs {
		l, err := BuildLayer(d, act)
		if err != nil {
			return nil, wrapLayerIndex(i, err)
		}
		layers[i] = l
	}
	return NewModel(layers...)
}

func kernelFromRows(rows [][]float32) (tensor.Kernel, error) {
	var k tensor.Kernel
	if len(rows) != tensor.KernelSize {
		return k, errRows(len(rows))
	}
	for ky, row := range rows {
		if len(row) != tensor.KernelSize {
			return k, errCols(ky, len(row))
		}
		copy(k[ky*tensor.KernelSize:], row)
	}
	return k, nil
}

// Describe returns the external description of l. The activation is not
// part of the description.
func Describe(l *Layer) LayerDesc {
	d := LayerDesc{
		KW:           tensor.KernelSize,
		KH:           tensor.KernelSize,
		NInputPlane:  l.InputPlanes(),
		NOutputPlane: l.OutputPlanes(),
		Bias:         make([]float32, l.OutputPlanes()),
		Weight:       make([][][][]float32, l.OutputPlanes()),
	}
	for o := range d.Weight {
		d.Bias[o] = l.Bias(o)
		d.Weight[o] = make([][][]float32, l.InputPlanes())
		for i := range d.Weight[o] {
			k := l.Kernel(o, i)
			rows := make([][]float32, tensor.KernelSize)
			for ky := range rows {
				rows[ky] = append([]float32(nil), k[ky*tensor.KernelSize:(ky+1)*tensor.KernelSize]...)
			}
			d.Weight[o][i] = rows
		}
	}
	return d
}

// DescribeModel returns the descriptions of every layer of m.
func DescribeModel(m *Model) []LayerDesc {
	descs := make([]LayerDesc, m.Len())
	for k, l := range m.Layers() {
		descs[k] = Describe(l)
	}
	return descs
}
