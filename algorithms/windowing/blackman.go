package windowing

import (
	"math"
)

// Blackman window with the classic a0=0.42, a1=0.5, a2=0.08 coefficients
type Blackman struct {
	coefficients
}

// NewBlackman creates a new Blackman window
func NewBlackman(size int, symmetric bool) *Blackman {
	b := &Blackman{coefficients: coefficients{kind: TypeBlackman, weights: make([]float64, size)}}
	if size == 1 {
		b.weights[0] = 1.0
		return b
	}

	denominator := cosineDenominator(size, symmetric)
	a0, a1, a2 := 0.42, 0.5, 0.08
	for i := range size {
		arg := 2 * math.Pi * float64(i) / denominator
		// clamp tiny negative rounding at the edges
		b.weights[i] = math.Max(0, a0-a1*math.Cos(arg)+a2*math.Cos(2*arg))
	}
	return b
}
