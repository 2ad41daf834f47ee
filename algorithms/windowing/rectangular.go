package windowing

// Rectangular (boxcar) window: every weight is 1
type Rectangular struct {
	coefficients
}

// NewRectangular creates a new rectangular window
func NewRectangular(size int) *Rectangular {
	r := &Rectangular{coefficients: coefficients{kind: TypeRectangular, weights: make([]float64, size)}}
	for i := range r.weights {
		r.weights[i] = 1.0
	}
	return r
}
