package nn

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Activation is the element-wise non-linearity applied after the bias add,
// inside the convolve kernel.
//
// Only the leaky family is supported: f(x) = x for x >= 0, slope*x otherwise.
// Identity is the special case slope = 1, plain ReLU is slope = 0.
type Activation struct {
	slope float32
}

// Identity leaves values unchanged.
func Identity() Activation { return Activation{slope: 1} }

// LeakyReLU scales negative values by slope.
func LeakyReLU(slope float32) Activation { return Activation{slope: slope} }

// DefaultActivation is the leaky ReLU used by the published waifu2x weights.
func DefaultActivation() Activation { return LeakyReLU(0.1) }

// NegativeSlope returns the factor applied to negative values.
func (a Activation) NegativeSlope() float32 { return a.slope }

// IsIdentity reports whether the activation is a no-op.
func (a Activation) IsIdentity() bool { return a.slope == 1 }

// Apply evaluates the activation on the host.
func (a Activation) Apply(x float32) float32 {
	if x < 0 {
		return x * a.slope
	}
	return x
}

func (a Activation) String() string {
	switch a.slope {
	case 1:
		return "identity"
	case 0:
		return "relu"
	default:
		return fmt.Sprintf("leaky_relu(%g)", a.slope)
	}
}

// ParseActivation parses "identity", "relu", "leaky" or "leaky:<slope>".
func ParseActivation(s string) (Activation, error) {
	switch s {
	case "identity", "none", "linear":
		return Identity(), nil
	case "relu":
		return LeakyReLU(0), nil
	case "leaky", "leaky_relu":
		return DefaultActivation(), nil
	}
	rest, ok := strings.CutPrefix(s, "leaky:")
	if !ok {
		return Activation{}, fmt.Errorf("unknown activation %q", s)
	}
	slope, err := strconv.ParseFloat(rest, 32)
	if err != nil || math.IsNaN(slope) || math.IsInf(slope, 0) {
		return Activation{}, fmt.Errorf("invalid leaky slope %q", rest)
	}
	return LeakyReLU(float32(slope)), nil
}
