package windowing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannSymmetricCoefficients(t *testing.T) {
	h := NewHann(5, true)
	coeffs := h.GetCoefficients()

	expected := []float64{0, 0.5, 1, 0.5, 0}
	for i := range expected {
		assert.InDelta(t, expected[i], coeffs[i], 1e-12, "index %d", i)
	}
	assert.True(t, h.IsSymmetric())
	assert.Equal(t, "hann", h.GetType())
}

func TestHannMatchesRaisedCosine(t *testing.T) {
	const size = 4096
	h := NewHann(size, true)
	coeffs := h.GetCoefficients()
	for _, i := range []int{0, 1, 100, 2047, 2048, 4095} {
		want := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
		assert.InDelta(t, want, coeffs[i], 1e-12)
	}
}

func TestApplyInPlaceRejectsWrongLength(t *testing.T) {
	h := NewHann(8, true)
	assert.Error(t, h.ApplyInPlace(make([]float64, 7)))
	assert.Nil(t, h.Apply(make([]float64, 9)))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	h := NewHann(3, true)
	signal := []float64{2, 2, 2}
	out := h.Apply(signal)
	assert.Equal(t, []float64{2, 2, 2}, signal)
	assert.InDelta(t, 2.0, out[1], 1e-12)
	assert.InDelta(t, 0.0, out[0], 1e-12)
}

func TestNewFactory(t *testing.T) {
	for _, typ := range SupportedTypes() {
		w, err := New(typ, 16)
		require.NoError(t, err)
		assert.Equal(t, string(typ), w.GetType())
		assert.Equal(t, 16, w.GetSize())
	}

	w, err := New("", 4)
	require.NoError(t, err)
	assert.Equal(t, "hann", w.GetType())

	_, err = New("kaiser", 4)
	assert.Error(t, err)
	_, err = New(TypeHann, 0)
	assert.Error(t, err)
}

func TestSingleSampleWindow(t *testing.T) {
	w, err := New(TypeHann, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, w.GetCoefficients())
}
