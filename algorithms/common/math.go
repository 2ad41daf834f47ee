package common

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical helpers shared by the chroma and tonal packages, backed by gonum

// Mean calculates the arithmetic mean of a slice
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(data, nil)
}

// Entropy returns the Shannon entropy (nats) of data treated as a distribution.
// Data is normalized to unit sum first; an all-zero slice has zero entropy.
func Entropy(data []float64) float64 {
	sum := floats.Sum(data)
	if sum <= 0 {
		return 0.0
	}
	p := make([]float64, len(data))
	floats.ScaleTo(p, 1.0/sum, data)
	return stat.Entropy(p)
}

// ArgMax returns the index of the first maximum of data, or -1 for an empty slice.
// Ties resolve to the lowest index.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	// floats.MaxIdx returns the first occurrence of the maximum
	return floats.MaxIdx(data)
}
