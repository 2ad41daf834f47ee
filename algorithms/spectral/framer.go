package spectral

import (
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
)

// Framer slices a waveform into overlapping frames of frameSize samples,
// hopSize apart, and applies the analysis window to each one.
type Framer struct {
	frameSize int
	hopSize   int
	window    windowing.Window
}

// NewFramer creates a framer. A nil window selects a symmetric Hann window.
func NewFramer(frameSize, hopSize int, window windowing.Window) (*Framer, error) {
	if frameSize <= 0 {
		return nil, common.NewConfigurationError("frame_size", "must be positive, got %d", frameSize)
	}
	if hopSize <= 0 {
		return nil, common.NewConfigurationError("hop_size", "must be positive, got %d", hopSize)
	}
	if window == nil {
		window = windowing.NewHann(frameSize, true)
	}
	if window.GetSize() != frameSize {
		return nil, common.NewConfigurationError("window", "size %d does not match frame size %d", window.GetSize(), frameSize)
	}

	return &Framer{
		frameSize: frameSize,
		hopSize:   hopSize,
		window:    window,
	}, nil
}

// Count returns floor((length-frameSize)/hopSize)+1, or 0 when the signal
// is shorter than one frame.
func (f *Framer) Count(length int) int {
	if length < f.frameSize {
		return 0
	}
	return (length-f.frameSize)/f.hopSize + 1
}

// Frame copies frame index of signal into dst and windows it.
// dst must hold frameSize samples.
func (f *Framer) Frame(signal []float64, index int, dst []float64) error {
	start := index * f.hopSize
	end := start + f.frameSize
	if index < 0 || end > len(signal) {
		return common.NewInputError("frame %d out of range for %d samples", index, len(signal))
	}

	copy(dst, signal[start:end])
	return f.window.ApplyInPlace(dst)
}

// Frames returns every windowed frame of signal. A signal shorter than one
// frame yields an empty slice.
func (f *Framer) Frames(signal []float64) [][]float64 {
	count := f.Count(len(signal))
	frames := make([][]float64, count)
	for i := range count {
		frames[i] = make([]float64, f.frameSize)
		// index is always in range here
		_ = f.Frame(signal, i, frames[i])
	}
	return frames
}

// FrameTime returns the start time in seconds of frame index
func (f *Framer) FrameTime(index, sampleRate int) float64 {
	return float64(index*f.hopSize) / float64(sampleRate)
}

// FrameSize returns the frame length in samples
func (f *Framer) FrameSize() int {
	return f.frameSize
}

// HopSize returns the stride between frames in samples
func (f *Framer) HopSize() int {
	return f.hopSize
}

// Window returns the analysis window
func (f *Framer) Window() windowing.Window {
	return f.window
}
