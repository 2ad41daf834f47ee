package windowing

import (
	"math"
)

// Hamming window: 0.54 - 0.46*cos(2*pi*i/(N-1))
type Hamming struct {
	coefficients
}

// NewHamming creates a new Hamming window
func NewHamming(size int, symmetric bool) *Hamming {
	h := &Hamming{coefficients: coefficients{kind: TypeHamming, weights: make([]float64, size)}}
	if size == 1 {
		h.weights[0] = 1.0
		return h
	}

	denominator := cosineDenominator(size, symmetric)
	for i := range size {
		h.weights[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
	return h
}
