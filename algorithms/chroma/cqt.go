package chroma

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
	"github.com/RyanBlaney/sonido-chords/logging"
)

const (
	// DefaultCQTOctaves is the span of the constant-Q analysis, starting at C2
	DefaultCQTOctaves = 6

	// DefaultBinsPerOctave gives one constant-Q bin per semitone
	DefaultBinsPerOctave = 12

	// kernel spectrum values below this fraction of the peak are dropped
	cqtSparsity = 0.0054

	// MIDI note of C2, the lowest constant-Q bin
	cqtLowestNote = 36
)

// CQTBuilder computes chromagrams from a constant-Q transform.
//
// Bins are spaced logarithmically: f_k = f_min * 2^(k/binsPerOctave), with
// f_min at C2 for the given tuning, so each bin sits on a pitch. Bin k
// correlates the frame with a Hann-windowed complex exponential Q periods
// long, Q = 1/(2^(1/binsPerOctave)-1), so low bins see longer windows than
// high ones. The correlation is evaluated in the frequency domain against a
// precomputed sparse kernel.
//
// Frames are centred where the STFT framer would centre them, so a CQT
// chromagram has the same frame count and hop as an STFT one.
type CQTBuilder struct {
	sampleRate    int
	frameSize     int
	hopSize       int
	tuningFreq    float64
	minFreq       float64
	binsPerOctave int
	qFactor       float64
	workers       int

	freqBins []float64
	pitch    []int // bin -> pitch class, -1 below the cutoff
	fftSize  int
	kernel   []sparseKernel

	fft    *spectral.FFT
	logger logging.Logger
}

// sparseKernel holds the conjugated, 1/fftSize-scaled spectrum of one
// bin's time-domain kernel at the positions that matter
type sparseKernel struct {
	index []int
	value []complex128
}

// NewCQTBuilder creates a constant-Q chromagram builder. Bins below
// minFreq are left out of the fold, as with the STFT builder.
func NewCQTBuilder(sampleRate, frameSize, hopSize int, tuningFreq, minFreq float64) (*CQTBuilder, error) {
	if sampleRate <= 0 {
		return nil, common.NewInputError("sample rate must be positive, got %d", sampleRate)
	}
	if frameSize <= 0 {
		return nil, common.NewConfigurationError("frame_size", "must be positive, got %d", frameSize)
	}
	if hopSize <= 0 {
		return nil, common.NewConfigurationError("hop_size", "must be positive, got %d", hopSize)
	}
	if tuningFreq <= 0 || math.IsNaN(tuningFreq) || math.IsInf(tuningFreq, 0) {
		return nil, common.NewConfigurationError("tuning_reference", "must be a positive frequency, got %v", tuningFreq)
	}
	if minFreq < 0 || math.IsNaN(minFreq) {
		return nil, common.NewConfigurationError("low_freq_cutoff", "must not be negative, got %v", minFreq)
	}

	b := &CQTBuilder{
		sampleRate:    sampleRate,
		frameSize:     frameSize,
		hopSize:       hopSize,
		tuningFreq:    tuningFreq,
		minFreq:       minFreq,
		binsPerOctave: DefaultBinsPerOctave,
		qFactor:       1.0 / (math.Pow(2, 1.0/DefaultBinsPerOctave) - 1),
		fft:           spectral.NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component": "chroma_cqt_builder",
		}),
	}

	if err := b.computeKernel(); err != nil {
		return nil, err
	}
	return b, nil
}

// SetWorkers fixes the number of frame workers; 0 picks automatically
func (b *CQTBuilder) SetWorkers(workers int) {
	b.workers = max(0, workers)
}

// Frequencies returns the centre frequency of every constant-Q bin
func (b *CQTBuilder) Frequencies() []float64 {
	out := make([]float64, len(b.freqBins))
	copy(out, b.freqBins)
	return out
}

// computeKernel lays out the bins below Nyquist and precomputes their
// sparse frequency-domain kernels
func (b *CQTBuilder) computeKernel() error {
	lowest := b.tuningFreq * math.Pow(2, float64(cqtLowestNote-69)/12)
	nyquist := float64(b.sampleRate) / 2

	total := DefaultCQTOctaves * b.binsPerOctave
	for k := range total {
		freq := lowest * math.Pow(2, float64(k)/float64(b.binsPerOctave))
		if freq >= nyquist {
			break
		}
		b.freqBins = append(b.freqBins, freq)
	}
	if len(b.freqBins) == 0 {
		return common.NewConfigurationError("sample_rate", "%d Hz is too low for a constant-Q chromagram", b.sampleRate)
	}

	b.pitch = make([]int, len(b.freqBins))
	for k, freq := range b.freqBins {
		if freq < b.minFreq {
			b.pitch[k] = -1
			continue
		}
		b.pitch[k] = PitchClass(freq, b.tuningFreq)
	}

	// the lowest folded bin has the longest kernel
	longest := 0
	for k, freq := range b.freqBins {
		if b.pitch[k] >= 0 {
			longest = b.kernelLength(freq)
			break
		}
	}
	b.fftSize = nextPowerOfTwo(max(longest, b.frameSize))
	b.kernel = make([]sparseKernel, len(b.freqBins))

	buf := make([]complex128, b.fftSize)
	for k, freq := range b.freqBins {
		if b.pitch[k] < 0 {
			continue
		}
		clear(buf)

		length := b.kernelLength(freq)
		weights := windowing.NewHann(length, true).GetCoefficients()
		norm := 0.0
		for _, w := range weights {
			norm += w
		}

		start := (b.fftSize - length) / 2
		center := length / 2
		for n, w := range weights {
			phase := 2 * math.Pi * freq * float64(n-center) / float64(b.sampleRate)
			buf[start+n] = complex(w/norm, 0) * cmplx.Exp(complex(0, phase))
		}

		spectrum := b.fft.ComputeComplex(buf)
		peak := 0.0
		for _, v := range spectrum {
			peak = max(peak, cmplx.Abs(v))
		}

		var sk sparseKernel
		scale := complex(1/float64(b.fftSize), 0)
		for n, v := range spectrum {
			if cmplx.Abs(v) >= cqtSparsity*peak {
				sk.index = append(sk.index, n)
				sk.value = append(sk.value, cmplx.Conj(v)*scale)
			}
		}
		b.kernel[k] = sk
	}

	return nil
}

// kernelLength returns Q periods of frequency in samples, between 3 and
// one second of audio
func (b *CQTBuilder) kernelLength(frequency float64) int {
	length := int(math.Ceil(b.qFactor * float64(b.sampleRate) / frequency))
	return min(max(length, 3), max(b.sampleRate, 3))
}

// Column folds the constant-Q magnitudes of one frame spectrum into a
// unit-norm 12-vector. It returns false when no bin above the cutoff
// carries energy.
func (b *CQTBuilder) Column(spectrum []complex128) ([]float64, bool) {
	column := make([]float64, NumPitchClasses)
	for k, sk := range b.kernel {
		pc := b.pitch[k]
		if pc < 0 {
			continue
		}
		var acc complex128
		for i, n := range sk.index {
			acc += spectrum[n] * sk.value[i]
		}
		column[pc] += cmplx.Abs(acc)
	}
	return column, common.L2NormalizeInPlace(column)
}

// Build computes the constant-Q chromagram of signal, one column per
// analysis frame
func (b *CQTBuilder) Build(signal []float64) (*Chromagram, error) {
	if len(signal) < b.frameSize {
		return nil, common.NewInputError("waveform has %d samples, shorter than one frame of %d",
			len(signal), b.frameSize)
	}

	numFrames := (len(signal)-b.frameSize)/b.hopSize + 1
	columns := make([][]float64, numFrames)
	silent := make([]bool, numFrames)

	workers := b.workers
	if workers <= 0 {
		workers = spectral.OptimalWorkerCount(numFrames)
	}
	buffers := make([][]float64, workers)
	for i := range buffers {
		buffers[i] = make([]float64, b.fftSize)
	}

	spectral.ParallelFrames(numFrames, workers, func(worker, frame int) {
		segment := buffers[worker]
		b.segment(signal, frame, segment)

		column, ok := b.Column(b.fft.Compute(segment))
		columns[frame] = column
		silent[frame] = !ok
	})

	chromagram := &Chromagram{
		Columns:    columns,
		Silent:     silent,
		SampleRate: b.sampleRate,
		HopSize:    b.hopSize,
	}

	b.logger.Debug("Constant-Q chromagram built", logging.Fields{
		"frames":        chromagram.Frames(),
		"silent_frames": chromagram.SilentFrames(),
		"cqt_bins":      len(b.freqBins),
		"fft_size":      b.fftSize,
		"tuning":        b.tuningFreq,
		"cutoff_hz":     b.minFreq,
	})

	return chromagram, nil
}

// segment copies fftSize samples centred on frame's centre into dst,
// zero-padding past either end of signal
func (b *CQTBuilder) segment(signal []float64, frame int, dst []float64) {
	center := frame*b.hopSize + b.frameSize/2
	start := center - b.fftSize/2
	for i := range dst {
		j := start + i
		if j < 0 || j >= len(signal) {
			dst[i] = 0
			continue
		}
		dst[i] = signal[j]
	}
}

// nextPowerOfTwo finds the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
