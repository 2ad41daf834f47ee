package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestFramerCount(t *testing.T) {
	framer, err := NewFramer(4096, 512, nil)
	require.NoError(t, err)

	cases := map[int]int{
		4095:  0,
		4096:  1,
		4607:  1,
		4608:  2,
		22050: (22050-4096)/512 + 1,
	}
	for length, want := range cases {
		assert.Equal(t, want, framer.Count(length), "length %d", length)
		assert.Len(t, framer.Frames(make([]float64, length)), want)
	}
}

func TestFramerAppliesWindow(t *testing.T) {
	framer, err := NewFramer(4, 2, nil)
	require.NoError(t, err)

	signal := []float64{1, 1, 1, 1, 1, 1}
	frames := framer.Frames(signal)
	require.Len(t, frames, 2)

	hann := windowing.NewHann(4, true).GetCoefficients()
	for _, frame := range frames {
		for i := range frame {
			assert.InDelta(t, hann[i], frame[i], 1e-12)
		}
	}
	assert.InDelta(t, 2.0/22050.0, framer.FrameTime(1, 22050), 1e-15)
}

func TestFramerFrameOffsets(t *testing.T) {
	framer, err := NewFramer(3, 2, windowing.NewRectangular(3))
	require.NoError(t, err)

	frames := framer.Frames([]float64{0, 1, 2, 3, 4, 5, 6})
	assert.Equal(t, [][]float64{{0, 1, 2}, {2, 3, 4}, {4, 5, 6}}, frames)
	assert.InDelta(t, 4.0/8000.0, framer.FrameTime(2, 8000), 1e-15)
}

func TestNewFramerValidation(t *testing.T) {
	_, err := NewFramer(0, 512, nil)
	assert.True(t, common.IsConfigurationError(err))

	_, err = NewFramer(1024, 0, nil)
	assert.True(t, common.IsConfigurationError(err))

	_, err = NewFramer(1024, 256, windowing.NewHann(512, true))
	assert.True(t, common.IsConfigurationError(err))
}

func TestHalfSpectrumLengthAndPeak(t *testing.T) {
	const n, sr = 1024, 8192
	// 512 Hz lands exactly on bin 64
	signal := sine(512, sr, n)

	half := NewFFT().HalfSpectrum(signal)
	require.Len(t, half, n/2+1)

	peak, peakMag := 0, 0.0
	for k, bin := range half {
		if m := cmplx.Abs(bin); m > peakMag {
			peak, peakMag = k, m
		}
	}
	assert.Equal(t, 64, peak)
	assert.InDelta(t, 512.0, BinFrequency(peak, n, sr), 1e-9)
	assert.InDelta(t, n/2.0, peakMag, 1e-6)
}

func TestHalfSpectrumNonPowerOfTwo(t *testing.T) {
	signal := []float64{1, 0, 0, 0, 0, 0}
	half := NewFFT().HalfSpectrum(signal)
	require.Len(t, half, 4)
	for _, bin := range half {
		assert.InDelta(t, 1.0, cmplx.Abs(bin), 1e-12)
	}
}

func TestComputeComplexMatchesReal(t *testing.T) {
	f := NewFFT()
	signal := []float64{0.5, -1, 2, 0.25, 0, 3}
	asComplex := make([]complex128, len(signal))
	for i, x := range signal {
		asComplex[i] = complex(x, 0)
	}

	want := f.Compute(signal)
	got := f.ComputeComplex(asComplex)
	require.Len(t, got, len(want))
	for k := range want {
		assert.InDelta(t, 0.0, cmplx.Abs(want[k]-got[k]), 1e-12)
	}
	assert.Empty(t, f.ComputeComplex(nil))
}

func TestSTFTShapes(t *testing.T) {
	framer, err := NewFramer(4096, 512, nil)
	require.NoError(t, err)
	stft := NewSTFT(framer)

	signal := sine(440, 22050, 22050)
	result, err := stft.Compute(signal, 22050)
	require.NoError(t, err)

	assert.Equal(t, (22050-4096)/512+1, result.TimeFrames)
	assert.Equal(t, 2049, result.FreqBins)
	assert.Len(t, result.Complex, result.TimeFrames)
	assert.Len(t, result.Magnitude[0], 2049)
	assert.InDelta(t, 22050.0/4096.0, result.FreqResolution, 1e-12)
	assert.InDelta(t, 512.0/22050.0, result.TimeResolution, 1e-12)
}

func TestSTFTDeterministicAcrossWorkerCounts(t *testing.T) {
	framer, err := NewFramer(256, 64, nil)
	require.NoError(t, err)
	signal := sine(1000, 8000, 4000)

	serial := NewSTFT(framer)
	serial.SetWorkers(1)
	a, err := serial.Compute(signal, 8000)
	require.NoError(t, err)

	parallel := NewSTFT(framer)
	parallel.SetWorkers(7)
	b, err := parallel.Compute(signal, 8000)
	require.NoError(t, err)

	assert.Equal(t, a.Magnitude, b.Magnitude)
	assert.Equal(t, a.Complex, b.Complex)
}

func TestSTFTInputErrors(t *testing.T) {
	framer, err := NewFramer(4096, 512, nil)
	require.NoError(t, err)
	stft := NewSTFT(framer)

	_, err = stft.Compute(nil, 22050)
	assert.True(t, common.IsInputError(err))

	_, err = stft.Compute(make([]float64, 4095), 22050)
	assert.True(t, common.IsInputError(err))

	_, err = stft.Compute(make([]float64, 8192), 0)
	assert.True(t, common.IsInputError(err))

	withNaN := make([]float64, 8192)
	withNaN[100] = math.NaN()
	_, err = stft.Compute(withNaN, 22050)
	assert.True(t, common.IsInputError(err))

	withInf := make([]float64, 8192)
	withInf[8191] = math.Inf(-1)
	_, err = stft.Compute(withInf, 22050)
	assert.True(t, common.IsInputError(err))
}

func TestParallelFramesVisitsEveryIndexOnce(t *testing.T) {
	seen := make([]int, 257)
	ParallelFrames(len(seen), 5, func(_, frame int) {
		seen[frame]++
	})
	for i, count := range seen {
		assert.Equal(t, 1, count, "frame %d", i)
	}

	called := false
	ParallelFrames(0, 4, func(_, _ int) { called = true })
	assert.False(t, called)
}
