package windowing

import (
	"fmt"
	"strings"
)

// Type names an analysis window
type Type string

const (
	TypeHann        Type = "hann"
	TypeHamming     Type = "hamming"
	TypeBlackman    Type = "blackman"
	TypeRectangular Type = "rectangular"
)

// Window is a fixed-length analysis window applied element-wise to a frame
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() string
}

// SupportedTypes lists the window names accepted by New
func SupportedTypes() []Type {
	return []Type{TypeHann, TypeHamming, TypeBlackman, TypeRectangular}
}

// New builds a symmetric window of the given type and size.
// An empty type selects Hann.
func New(windowType Type, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch Type(strings.ToLower(string(windowType))) {
	case "", TypeHann:
		return NewHann(size, true), nil
	case TypeHamming:
		return NewHamming(size, true), nil
	case TypeBlackman:
		return NewBlackman(size, true), nil
	case TypeRectangular:
		return NewRectangular(size), nil
	default:
		return nil, fmt.Errorf("unsupported window type %q", windowType)
	}
}

// coefficients holds precomputed weights shared by every window type
type coefficients struct {
	kind    Type
	weights []float64
}

// cosineDenominator returns the divisor of the cosine argument.
// Symmetric windows divide by size-1 so both ends reach the minimum.
func cosineDenominator(size int, symmetric bool) float64 {
	if symmetric {
		return float64(size - 1)
	}
	return float64(size)
}

// Apply returns a windowed copy of signal, or nil when the length differs
func (c *coefficients) Apply(signal []float64) []float64 {
	if len(signal) != len(c.weights) {
		return nil
	}

	windowed := make([]float64, len(signal))
	for i, w := range c.weights {
		windowed[i] = signal[i] * w
	}
	return windowed
}

// ApplyInPlace multiplies signal by the window
func (c *coefficients) ApplyInPlace(signal []float64) error {
	if len(signal) != len(c.weights) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(c.weights))
	}

	for i, w := range c.weights {
		signal[i] *= w
	}
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (c *coefficients) GetCoefficients() []float64 {
	out := make([]float64, len(c.weights))
	copy(out, c.weights)
	return out
}

// GetSize returns the window size
func (c *coefficients) GetSize() int {
	return len(c.weights)
}

// GetType returns the window type
func (c *coefficients) GetType() string {
	return string(c.kind)
}
