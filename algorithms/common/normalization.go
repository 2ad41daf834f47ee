package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// UnitTolerance is the slack allowed when checking that a vector has unit L2 norm
const UnitTolerance = 1e-9

// L2Norm returns the Euclidean norm of v using gonum
func L2Norm(v []float64) float64 {
	if len(v) == 0 {
		return 0.0
	}
	return floats.Norm(v, 2)
}

// L2NormalizeInPlace scales v to unit Euclidean norm.
// A zero vector is left untouched and false is returned.
func L2NormalizeInPlace(v []float64) bool {
	norm := L2Norm(v)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return false
	}
	floats.Scale(1.0/norm, v)
	return true
}

// L2Normalize returns a unit-norm copy of v and whether normalization happened
func L2Normalize(v []float64) ([]float64, bool) {
	out := make([]float64, len(v))
	copy(out, v)
	ok := L2NormalizeInPlace(out)
	return out, ok
}

// IsUnit reports whether v has L2 norm within UnitTolerance of 1
func IsUnit(v []float64) bool {
	return math.Abs(L2Norm(v)-1.0) <= UnitTolerance
}

// IsZero reports whether every element of v is exactly zero
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// FirstNonFinite returns the index of the first NaN or infinite element, or -1
func FirstNonFinite(v []float64) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}
