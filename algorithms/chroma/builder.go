package chroma

import (
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/RyanBlaney/sonido-chords/logging"
)

const (
	// NumPitchClasses is the chroma dimensionality (C, C#, ..., B)
	NumPitchClasses = 12

	// DefaultTuningFrequency is the A4 reference in Hz
	DefaultTuningFrequency = 440.0

	// DefaultLowFrequencyCutoff drops bins that carry no reliable pitch (roughly E2)
	DefaultLowFrequencyCutoff = 80.0
)

// Method selects the transform a chromagram is folded from
type Method string

const (
	MethodSTFT Method = "stft" // linear-frequency STFT bins
	MethodCQT  Method = "cqt"  // constant-Q bins, one per semitone
)

// SupportedMethods lists the chromagram methods in preference order
func SupportedMethods() []Method {
	return []Method{MethodSTFT, MethodCQT}
}

// Builder folds magnitude spectra into 12-bin pitch-class profiles.
//
// Every bin at or above the low-frequency cutoff maps to
// round(69 + 12*log2(f/tuning)) mod 12; magnitudes landing in the same pitch
// class are summed and each frame is then L2-normalized. Frames are
// independent, so Build maps over them in parallel.
type Builder struct {
	sampleRate int
	frameSize  int
	tuningFreq float64
	minFreq    float64
	workers    int

	// bin index -> pitch class, -1 below the cutoff
	mapping []int

	logger logging.Logger
}

// NewBuilder creates a chromagram builder for spectra of frameSize-point transforms
func NewBuilder(sampleRate, frameSize int, tuningFreq, minFreq float64) (*Builder, error) {
	if sampleRate <= 0 {
		return nil, common.NewInputError("sample rate must be positive, got %d", sampleRate)
	}
	if frameSize <= 0 {
		return nil, common.NewConfigurationError("frame_size", "must be positive, got %d", frameSize)
	}
	if tuningFreq <= 0 || math.IsNaN(tuningFreq) || math.IsInf(tuningFreq, 0) {
		return nil, common.NewConfigurationError("tuning_reference", "must be a positive frequency, got %v", tuningFreq)
	}
	if minFreq < 0 || math.IsNaN(minFreq) {
		return nil, common.NewConfigurationError("low_freq_cutoff", "must not be negative, got %v", minFreq)
	}

	b := &Builder{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		tuningFreq: tuningFreq,
		minFreq:    minFreq,
		logger: logging.WithFields(logging.Fields{
			"component": "chroma_builder",
		}),
	}
	b.mapping = b.calculateChromaMapping()
	return b, nil
}

// NewBuilderDefault creates a builder with A4=440 Hz tuning and an 80 Hz cutoff
func NewBuilderDefault(sampleRate, frameSize int) (*Builder, error) {
	return NewBuilder(sampleRate, frameSize, DefaultTuningFrequency, DefaultLowFrequencyCutoff)
}

// SetWorkers fixes the number of frame workers; 0 picks automatically
func (b *Builder) SetWorkers(workers int) {
	b.workers = max(0, workers)
}

// calculateChromaMapping maps every non-negative-frequency bin to a pitch class once
func (b *Builder) calculateChromaMapping() []int {
	freqBins := b.frameSize/2 + 1
	mapping := make([]int, freqBins)

	for k := range freqBins {
		frequency := spectral.BinFrequency(k, b.frameSize, b.sampleRate)
		if frequency < b.minFreq || frequency <= 0 {
			mapping[k] = -1
			continue
		}
		mapping[k] = PitchClass(frequency, b.tuningFreq)
	}

	return mapping
}

// FrequencyToMIDI converts frequency to a fractional MIDI note number.
// A4 at the tuning frequency is note 69.
func FrequencyToMIDI(frequency, tuningFreq float64) float64 {
	return 69.0 + 12.0*math.Log2(frequency/tuningFreq)
}

// PitchClass returns the pitch class (0=C ... 11=B) nearest to frequency.
// Halfway cases round to even, matching numpy's round.
func PitchClass(frequency, tuningFreq float64) int {
	midi := int(math.RoundToEven(FrequencyToMIDI(frequency, tuningFreq)))
	return ((midi % NumPitchClasses) + NumPitchClasses) % NumPitchClasses
}

// BinPitchClass returns the pitch class of bin k, or -1 if the bin is
// below the cutoff or outside the spectrum.
func (b *Builder) BinPitchClass(k int) int {
	if k < 0 || k >= len(b.mapping) {
		return -1
	}
	return b.mapping[k]
}

// Column folds one magnitude spectrum into a unit-norm 12-vector.
// It returns false when the frame has no energy above the cutoff; the
// vector is then left as all zeros.
func (b *Builder) Column(magnitudes []float64) ([]float64, bool) {
	column := make([]float64, NumPitchClasses)
	for k, magnitude := range magnitudes {
		if k >= len(b.mapping) {
			break
		}
		if pc := b.mapping[k]; pc >= 0 {
			column[pc] += magnitude
		}
	}

	return column, common.L2NormalizeInPlace(column)
}

// Build converts an STFT into a chromagram, one column per frame
func (b *Builder) Build(stft *spectral.STFTResult) (*Chromagram, error) {
	if stft == nil || stft.TimeFrames == 0 {
		return nil, common.NewInputError("no frames to build a chromagram from")
	}
	if stft.WindowSize != b.frameSize {
		return nil, common.NewConfigurationError("frame_size", "spectrum of size %d does not match builder size %d", stft.WindowSize, b.frameSize)
	}
	if stft.SampleRate != b.sampleRate {
		return nil, common.NewConfigurationError("sample_rate", "spectrum at %d Hz does not match builder rate %d Hz", stft.SampleRate, b.sampleRate)
	}

	columns := make([][]float64, stft.TimeFrames)
	silent := make([]bool, stft.TimeFrames)

	spectral.ParallelFrames(stft.TimeFrames, b.workers, func(_, frame int) {
		column, ok := b.Column(stft.Magnitude[frame])
		columns[frame] = column
		silent[frame] = !ok
	})

	chromagram := &Chromagram{
		Columns:    columns,
		Silent:     silent,
		SampleRate: stft.SampleRate,
		HopSize:    stft.HopSize,
	}

	b.logger.Debug("Chromagram built", logging.Fields{
		"frames":        chromagram.Frames(),
		"silent_frames": chromagram.SilentFrames(),
		"tuning":        b.tuningFreq,
		"cutoff_hz":     b.minFreq,
	})

	return chromagram, nil
}
