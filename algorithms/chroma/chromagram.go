package chroma

import (
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"gonum.org/v1/gonum/mat"
)

// PitchClassNames labels the chroma rows
var PitchClassNames = [NumPitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Chromagram is a 12 x N pitch-class energy matrix stored column-major:
// Columns[t] is the unit-norm profile of frame t, or all zeros for a
// silent frame.
type Chromagram struct {
	Columns    [][]float64 `json:"columns"`
	Silent     []bool      `json:"silent"`
	SampleRate int         `json:"sample_rate"`
	HopSize    int         `json:"hop_size"`
}

// Summary describes a chromagram at a glance
type Summary struct {
	Frames       int       `json:"frames"`
	SilentFrames int       `json:"silent_frames"`
	MeanProfile  []float64 `json:"mean_profile"`
	StdProfile   []float64 `json:"std_profile"`
	Entropy      float64   `json:"entropy"`
	Dominant     string    `json:"dominant"`
}

// Frames returns the number of columns
func (c *Chromagram) Frames() int {
	return len(c.Columns)
}

// SilentFrames counts the all-zero columns
func (c *Chromagram) SilentFrames() int {
	count := 0
	for _, s := range c.Silent {
		if s {
			count++
		}
	}
	return count
}

// FrameTime returns the start time in seconds of frame t
func (c *Chromagram) FrameTime(t int) float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(t*c.HopSize) / float64(c.SampleRate)
}

// Matrix returns the chromagram as a 12 x N dense matrix, or nil when empty
func (c *Chromagram) Matrix() *mat.Dense {
	n := len(c.Columns)
	if n == 0 {
		return nil
	}

	m := mat.NewDense(NumPitchClasses, n, nil)
	for t, column := range c.Columns {
		m.SetCol(t, column)
	}
	return m
}

// Summarize computes per-pitch-class mean and spread over all frames,
// the entropy of the mean profile and its strongest pitch class
func (c *Chromagram) Summarize() Summary {
	summary := Summary{
		Frames:       c.Frames(),
		SilentFrames: c.SilentFrames(),
		MeanProfile:  make([]float64, NumPitchClasses),
		StdProfile:   make([]float64, NumPitchClasses),
	}
	if summary.Frames == 0 {
		return summary
	}

	row := make([]float64, summary.Frames)
	for pc := range NumPitchClasses {
		for t, column := range c.Columns {
			row[t] = column[pc]
		}
		summary.MeanProfile[pc] = common.Mean(row)
		summary.StdProfile[pc] = common.StandardDeviation(row)
	}

	summary.Entropy = common.Entropy(summary.MeanProfile)
	if !common.IsZero(summary.MeanProfile) {
		summary.Dominant = PitchClassNames[common.ArgMax(summary.MeanProfile)]
	}
	return summary
}
