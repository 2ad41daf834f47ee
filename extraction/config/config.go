package config

import (
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
)

// Config holds every parameter of the chord extraction pipeline
type Config struct {
	// Spectral analysis
	FrameSize  int    `json:"frame_size" yaml:"frame_size" mapstructure:"frame_size"`
	HopSize    int    `json:"hop_size" yaml:"hop_size" mapstructure:"hop_size"`
	SampleRate int    `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate"` // Rate audio is decoded to
	Window     string `json:"window" yaml:"window" mapstructure:"window"`

	// Chromagram
	ChromaMethod    string  `json:"chroma_method" yaml:"chroma_method" mapstructure:"chroma_method"`          // stft or cqt
	LowFreqCutoff   float64 `json:"low_freq_cutoff" yaml:"low_freq_cutoff" mapstructure:"low_freq_cutoff"`    // Hz
	TuningReference float64 `json:"tuning_reference" yaml:"tuning_reference" mapstructure:"tuning_reference"` // A4 in Hz

	// Classification and segmentation
	MinSegmentDuration float64 `json:"min_segment_duration" yaml:"min_segment_duration" mapstructure:"min_segment_duration"` // seconds
	SilenceLabel       string  `json:"silence_label,omitempty" yaml:"silence_label,omitempty" mapstructure:"silence_label"`
	TemplatesFile      string  `json:"templates_file,omitempty" yaml:"templates_file,omitempty" mapstructure:"templates_file"`

	// Frame workers, 0 = automatic
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the standard analysis settings:
// 4096-sample frames every 512 samples at 22050 Hz, Hann window,
// STFT chromagram, 80 Hz cutoff, A4 = 440 Hz and a 0.1 s minimum segment.
func DefaultConfig() *Config {
	return &Config{
		FrameSize:          4096,
		HopSize:            512,
		SampleRate:         22050,
		Window:             string(windowing.TypeHann),
		ChromaMethod:       string(chroma.MethodSTFT),
		LowFreqCutoff:      80.0,
		TuningReference:    440.0,
		MinSegmentDuration: 0.1,
		Workers:            0,
	}
}

// Validate checks the configuration and returns a *common.ConfigurationError
// naming the first offending field
func (c *Config) Validate() error {
	if c.FrameSize <= 0 {
		return common.NewConfigurationError("frame_size", "must be positive, got %d", c.FrameSize)
	}
	if c.HopSize <= 0 {
		return common.NewConfigurationError("hop_size", "must be positive, got %d", c.HopSize)
	}
	if c.SampleRate <= 0 {
		return common.NewConfigurationError("sample_rate", "must be positive, got %d", c.SampleRate)
	}
	if _, err := windowing.New(windowing.Type(c.Window), c.FrameSize); err != nil {
		return common.NewConfigurationError("window", "%v", err)
	}
	if !isSupportedMethod(c.ChromaMethod) {
		return common.NewConfigurationError("chroma_method", "unknown method %q, want one of %v", c.ChromaMethod, chroma.SupportedMethods())
	}
	if c.LowFreqCutoff < 0 || !isFinite(c.LowFreqCutoff) {
		return common.NewConfigurationError("low_freq_cutoff", "must be a finite non-negative frequency, got %v", c.LowFreqCutoff)
	}
	if c.TuningReference <= 0 || !isFinite(c.TuningReference) {
		return common.NewConfigurationError("tuning_reference", "must be a positive frequency, got %v", c.TuningReference)
	}
	if c.MinSegmentDuration < 0 || !isFinite(c.MinSegmentDuration) {
		return common.NewConfigurationError("min_segment_duration", "must be a finite non-negative duration, got %v", c.MinSegmentDuration)
	}
	if c.Workers < 0 {
		return common.NewConfigurationError("workers", "must not be negative, got %d", c.Workers)
	}
	return nil
}

// FrameDuration returns the length of one analysis frame in seconds at the configured rate
func (c *Config) FrameDuration() float64 {
	return float64(c.FrameSize) / float64(c.SampleRate)
}

// an empty method means stft
func isSupportedMethod(method string) bool {
	if method == "" {
		return true
	}
	for _, m := range chroma.SupportedMethods() {
		if string(m) == method {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
