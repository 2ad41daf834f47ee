package windowing

import (
	"math"
)

// Hann is the raised-cosine window used for chromagram analysis.
// The symmetric form weights sample i by 0.5 - 0.5*cos(2*pi*i/(N-1)).
type Hann struct {
	coefficients
	symmetric bool
}

// NewHann creates a new Hann window
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		coefficients: coefficients{kind: TypeHann, weights: make([]float64, size)},
		symmetric:    symmetric,
	}

	if size == 1 {
		h.weights[0] = 1.0
		return h
	}

	denominator := cosineDenominator(size, symmetric)
	for i := range size {
		h.weights[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denominator)
	}
	return h
}

// IsSymmetric reports whether the window was generated in symmetric form
func (h *Hann) IsSymmetric() bool {
	return h.symmetric
}
