package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp. It is stateless and safe for concurrent use.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the full complex spectrum of a real signal.
// go-dsp handles any length in O(n log n), including non powers of two.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// HalfSpectrum returns bins 0..len(x)/2 inclusive, dropping the mirrored
// negative-frequency conjugates of a real input.
func (f *FFT) HalfSpectrum(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	full := f.Compute(x)
	half := make([]complex128, len(x)/2+1)
	copy(half, full[:len(half)])
	return half
}

// ComputeComplex returns the spectrum of a complex signal
func (f *FFT) ComputeComplex(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFT(x)
}

// BinFrequency returns the centre frequency in Hz of bin k for a transform of size n
func BinFrequency(k, n, sampleRate int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(k) * float64(sampleRate) / float64(n)
}
