package transcode

import (
	"math"
)

// Lanczos lobes per resample quality
var lanczosLobes = map[string]int{
	"fast":   3,
	"medium": 8,
	"high":   16,
}

// Resample converts signal from fromRate to toRate with a Lanczos
// windowed-sinc kernel of the given number of lobes. When downsampling,
// the kernel is stretched by the rate ratio so content above the new
// Nyquist frequency is suppressed. Output length is ceil(len*toRate/fromRate).
func Resample(signal []float64, fromRate, toRate, lobes int) []float64 {
	if len(signal) == 0 || fromRate <= 0 || toRate <= 0 || fromRate == toRate {
		return signal
	}
	lobes = max(lobes, 1)

	ratio := float64(fromRate) / float64(toRate)
	stretch := max(ratio, 1.0)
	support := float64(lobes) * stretch

	n := int(math.Ceil(float64(len(signal)) * float64(toRate) / float64(fromRate)))
	out := make([]float64, n)

	for i := range out {
		center := float64(i) * ratio
		lo := max(int(math.Ceil(center-support)), 0)
		hi := min(int(math.Floor(center+support)), len(signal)-1)

		sum, weights := 0.0, 0.0
		for j := lo; j <= hi; j++ {
			w := lanczosKernel((center-float64(j))/stretch, float64(lobes))
			sum += signal[j] * w
			weights += w
		}
		if weights != 0 {
			out[i] = sum / weights
		}
	}
	return out
}

// lanczosKernel computes sinc(x)*sinc(x/a) for |x| < a
func lanczosKernel(x, a float64) float64 {
	if math.Abs(x) < 1e-10 {
		return 1.0
	}
	if math.Abs(x) >= a {
		return 0.0
	}

	px := math.Pi * x
	return (a * math.Sin(px) * math.Sin(px/a)) / (px * px)
}
