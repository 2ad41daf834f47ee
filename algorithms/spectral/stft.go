package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/logging"
)

// STFT computes the short-time Fourier transform of a waveform
type STFT struct {
	fft     *FFT
	framer  *Framer
	workers int
	logger  logging.Logger
}

// STFTResult holds the non-negative-frequency half spectrum of every frame
type STFTResult struct {
	Complex        [][]complex128 `json:"-"`               // Time x Frequency complex spectrum
	Magnitude      [][]float64    `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int            `json:"time_frames"`     // Number of time frames
	FreqBins       int            `json:"freq_bins"`       // frameSize/2 + 1
	SampleRate     int            `json:"sample_rate"`     // Sample rate
	WindowSize     int            `json:"window_size"`     // FFT size
	HopSize        int            `json:"hop_size"`        // Hop size between frames
	FreqResolution float64        `json:"freq_resolution"` // Hz per bin
	TimeResolution float64        `json:"time_resolution"` // Seconds per hop
}

// NewSTFT creates an STFT that frames its input with framer
func NewSTFT(framer *Framer) *STFT {
	return &STFT{
		fft:    NewFFT(),
		framer: framer,
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// SetWorkers fixes the number of frame workers; 0 restores the automatic choice
func (s *STFT) SetWorkers(workers int) {
	s.workers = max(0, workers)
}

// ValidateSignal checks that signal can produce at least one frame
func (s *STFT) ValidateSignal(signal []float64, sampleRate int) error {
	if len(signal) == 0 {
		return common.NewInputError("empty waveform")
	}
	if sampleRate <= 0 {
		return common.NewInputError("sample rate must be positive, got %d", sampleRate)
	}
	if len(signal) < s.framer.FrameSize() {
		return common.NewInputError("waveform has %d samples, shorter than one frame of %d",
			len(signal), s.framer.FrameSize())
	}
	if i := common.FirstNonFinite(signal); i >= 0 {
		return common.NewInputError("sample %d is not finite (%v)", i, signal[i])
	}
	return nil
}

// Compute frames, windows and transforms signal. Frames are processed in
// parallel; each worker writes only its own frame rows so the result does
// not depend on scheduling.
func (s *STFT) Compute(signal []float64, sampleRate int) (*STFTResult, error) {
	if err := s.ValidateSignal(signal, sampleRate); err != nil {
		return nil, err
	}

	frameSize := s.framer.FrameSize()
	numFrames := s.framer.Count(len(signal))
	freqBins := frameSize/2 + 1

	complexSpectrum := make([][]complex128, numFrames)
	magnitude := make([][]float64, numFrames)

	workers := s.workers
	if workers <= 0 {
		workers = OptimalWorkerCount(numFrames)
	}
	buffers := make([][]float64, workers)
	for i := range buffers {
		buffers[i] = make([]float64, frameSize)
	}

	ParallelFrames(numFrames, workers, func(worker, frame int) {
		buf := buffers[worker]
		// Count guarantees the frame is in range and the window matches
		_ = s.framer.Frame(signal, frame, buf)

		half := s.fft.HalfSpectrum(buf)
		mags := make([]float64, freqBins)
		for k, bin := range half {
			mags[k] = cmplx.Abs(bin)
		}
		complexSpectrum[frame] = half
		magnitude[frame] = mags
	})

	s.logger.Debug("STFT computed", logging.Fields{
		"frames":    numFrames,
		"freq_bins": freqBins,
		"workers":   workers,
	})

	return &STFTResult{
		Complex:        complexSpectrum,
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     frameSize,
		HopSize:        s.framer.HopSize(),
		FreqResolution: float64(sampleRate) / float64(frameSize),
		TimeResolution: float64(s.framer.HopSize()) / float64(sampleRate),
	}, nil
}
