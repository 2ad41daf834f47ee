package chroma

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSampleRate = 22050
	testFrameSize  = 4096
	testHopSize    = 512
)

func sine(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / testSampleRate)
	}
	return out
}

func buildFromSignal(t *testing.T, signal []float64) *Chromagram {
	t.Helper()

	framer, err := spectral.NewFramer(testFrameSize, testHopSize, nil)
	require.NoError(t, err)
	stft, err := spectral.NewSTFT(framer).Compute(signal, testSampleRate)
	require.NoError(t, err)

	builder, err := NewBuilderDefault(testSampleRate, testFrameSize)
	require.NoError(t, err)
	chromagram, err := builder.Build(stft)
	require.NoError(t, err)
	return chromagram
}

func TestPitchClass(t *testing.T) {
	assert.Equal(t, 9, PitchClass(440, 440))
	assert.Equal(t, 9, PitchClass(880, 440))
	assert.Equal(t, 9, PitchClass(110, 440))
	assert.Equal(t, 0, PitchClass(261.63, 440))
	assert.Equal(t, 7, PitchClass(392.0, 440))
	// with baroque tuning 440 Hz sits a semitone above A
	assert.Equal(t, 10, PitchClass(440, 415.3))
	assert.InDelta(t, 69.0, FrequencyToMIDI(440, 440), 1e-12)
	assert.InDelta(t, 57.0, FrequencyToMIDI(220, 440), 1e-12)
}

func TestBinMappingHonoursCutoff(t *testing.T) {
	builder, err := NewBuilderDefault(testSampleRate, testFrameSize)
	require.NoError(t, err)

	// bin 14 is ~75.4 Hz, bin 15 ~80.8 Hz
	assert.Equal(t, -1, builder.BinPitchClass(0))
	assert.Equal(t, -1, builder.BinPitchClass(14))
	assert.Equal(t, 4, builder.BinPitchClass(15))
	assert.Equal(t, 9, builder.BinPitchClass(82))
	assert.Equal(t, -1, builder.BinPitchClass(testFrameSize/2+1))
}

func TestColumnSumsSamePitchClassAndNormalizes(t *testing.T) {
	builder, err := NewBuilderDefault(testSampleRate, testFrameSize)
	require.NoError(t, err)

	mags := make([]float64, testFrameSize/2+1)
	mags[81] = 3 // ~436 Hz, A
	mags[82] = 4 // ~441 Hz, A
	mags[49] = 7 // ~264 Hz, C
	mags[5] = 100

	column, ok := builder.Column(mags)
	require.True(t, ok)
	assert.InDelta(t, 1/math.Sqrt2, column[9], 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, column[0], 1e-12)
	assert.True(t, common.IsUnit(column))
}

func TestColumnBelowCutoffIsSilent(t *testing.T) {
	builder, err := NewBuilderDefault(testSampleRate, testFrameSize)
	require.NoError(t, err)

	mags := make([]float64, testFrameSize/2+1)
	for k := range 15 {
		mags[k] = 1
	}
	column, ok := builder.Column(mags)
	assert.False(t, ok)
	assert.True(t, common.IsZero(column))
}

func TestBuildSineIsDominatedByA(t *testing.T) {
	signal := sine(440, testSampleRate)
	chromagram := buildFromSignal(t, signal)

	require.Equal(t, (testSampleRate-testFrameSize)/testHopSize+1, chromagram.Frames())
	assert.Equal(t, 0, chromagram.SilentFrames())

	for i, column := range chromagram.Columns {
		assert.Equal(t, 9, common.ArgMax(column), "frame %d", i)
		assert.True(t, common.IsUnit(column), "frame %d", i)
	}

	summary := chromagram.Summarize()
	assert.Equal(t, "A", summary.Dominant)
	assert.Equal(t, chromagram.Frames(), summary.Frames)
}

func TestBuildSilenceGivesZeroColumns(t *testing.T) {
	chromagram := buildFromSignal(t, make([]float64, 3*testFrameSize))

	assert.Equal(t, chromagram.Frames(), chromagram.SilentFrames())
	for _, column := range chromagram.Columns {
		assert.True(t, common.IsZero(column))
	}

	summary := chromagram.Summarize()
	assert.Empty(t, summary.Dominant)
	assert.Equal(t, 0.0, summary.Entropy)
}

func TestMatrixLayout(t *testing.T) {
	chromagram := &Chromagram{
		Columns: [][]float64{
			{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0},
		},
		Silent:     []bool{false, false},
		SampleRate: testSampleRate,
		HopSize:    testHopSize,
	}

	m := chromagram.Matrix()
	rows, cols := m.Dims()
	assert.Equal(t, 12, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(9, 1))
	assert.InDelta(t, 512.0/22050.0, chromagram.FrameTime(1), 1e-15)

	assert.Nil(t, (&Chromagram{}).Matrix())
}

func TestBuildRejectsMismatchedSpectrum(t *testing.T) {
	builder, err := NewBuilderDefault(testSampleRate, 2048)
	require.NoError(t, err)

	framer, err := spectral.NewFramer(testFrameSize, testHopSize, nil)
	require.NoError(t, err)
	stft, err := spectral.NewSTFT(framer).Compute(make([]float64, testFrameSize), testSampleRate)
	require.NoError(t, err)

	_, err = builder.Build(stft)
	assert.True(t, common.IsConfigurationError(err))

	_, err = builder.Build(nil)
	assert.True(t, common.IsInputError(err))
}

func TestNewBuilderValidation(t *testing.T) {
	_, err := NewBuilder(0, 4096, 440, 80)
	assert.True(t, common.IsInputError(err))

	_, err = NewBuilder(22050, 4096, 0, 80)
	assert.True(t, common.IsConfigurationError(err))

	_, err = NewBuilder(22050, 4096, 440, -1)
	assert.True(t, common.IsConfigurationError(err))
}
