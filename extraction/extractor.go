package extraction

import (
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/spectral"
	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"github.com/RyanBlaney/sonido-chords/algorithms/windowing"
	"github.com/RyanBlaney/sonido-chords/extraction/config"
	"github.com/RyanBlaney/sonido-chords/logging"
)

// Result is the outcome of one extraction run
type Result struct {
	Chords       []string           `json:"chords"`
	Segments     []tonal.Segment    `json:"segments"`
	Labels       []tonal.FrameLabel `json:"-"`
	Frames       int                `json:"frames"`
	SilentFrames int                `json:"silent_frames"`
	SampleRate   int                `json:"sample_rate"`
	Duration     time.Duration      `json:"duration"`
	Profile      chroma.Summary     `json:"profile"`
}

// Extractor runs the full chord pipeline: framing, spectra, chromagram,
// per-frame classification and segmentation. It holds no per-call state
// and is safe for concurrent use.
type Extractor struct {
	config     *config.Config
	framer     *spectral.Framer
	stft       *spectral.STFT
	classifier *tonal.Classifier
	logger     logging.Logger
}

// New creates an extractor. A nil cfg uses config.DefaultConfig(). A nil
// library loads cfg.TemplatesFile, or the default major/minor triads when
// no file is configured.
func New(cfg *config.Config, library *tonal.TemplateLibrary) (*Extractor, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "chord_extractor",
	})

	if library == nil {
		var err error
		library, err = LoadLibrary(cfg)
		if err != nil {
			logger.Error(err, "Failed to load chord templates", logging.Fields{
				"templates_file": cfg.TemplatesFile,
			})
			return nil, err
		}
	}

	if cfg.SilenceLabel != "" {
		if _, taken := library.Lookup(cfg.SilenceLabel); taken {
			return nil, common.NewConfigurationError("silence_label", "%q is also a template name", cfg.SilenceLabel)
		}
	}

	window, err := windowing.New(windowing.Type(cfg.Window), cfg.FrameSize)
	if err != nil {
		return nil, err
	}
	framer, err := spectral.NewFramer(cfg.FrameSize, cfg.HopSize, window)
	if err != nil {
		return nil, err
	}

	stft := spectral.NewSTFT(framer)
	stft.SetWorkers(cfg.Workers)

	classifier, err := tonal.NewClassifier(library)
	if err != nil {
		return nil, err
	}
	classifier.SetSilenceLabel(cfg.SilenceLabel)

	logger.Debug("Chord extractor created", logging.Fields{
		"frame_size": cfg.FrameSize,
		"hop_size":   cfg.HopSize,
		"window":     window.GetType(),
		"chroma":     cfg.ChromaMethod,
		"templates":  library.Len(),
	})

	return &Extractor{
		config:     cfg,
		framer:     framer,
		stft:       stft,
		classifier: classifier,
		logger:     logger,
	}, nil
}

// LoadLibrary returns the template library selected by cfg
func LoadLibrary(cfg *config.Config) (*tonal.TemplateLibrary, error) {
	if cfg.TemplatesFile == "" {
		return tonal.DefaultTemplateLibrary()
	}
	return tonal.LoadTemplateLibrary(cfg.TemplatesFile)
}

// Config returns the extractor configuration
func (e *Extractor) Config() *config.Config {
	return e.config
}

// Library returns the template library used for classification
func (e *Extractor) Library() *tonal.TemplateLibrary {
	return e.classifier.Library()
}

// Chromagram computes the normalised chromagram of waveform with the
// configured method
func (e *Extractor) Chromagram(waveform []float64, sampleRate int) (*chroma.Chromagram, error) {
	if chroma.Method(e.config.ChromaMethod) == chroma.MethodCQT {
		return e.cqtChromagram(waveform, sampleRate)
	}

	spectrum, err := e.stft.Compute(waveform, sampleRate)
	if err != nil {
		return nil, err
	}

	builder, err := chroma.NewBuilder(sampleRate, e.config.FrameSize, e.config.TuningReference, e.config.LowFreqCutoff)
	if err != nil {
		return nil, err
	}
	builder.SetWorkers(e.config.Workers)

	return builder.Build(spectrum)
}

func (e *Extractor) cqtChromagram(waveform []float64, sampleRate int) (*chroma.Chromagram, error) {
	if err := e.stft.ValidateSignal(waveform, sampleRate); err != nil {
		return nil, err
	}

	builder, err := chroma.NewCQTBuilder(sampleRate, e.config.FrameSize, e.config.HopSize, e.config.TuningReference, e.config.LowFreqCutoff)
	if err != nil {
		return nil, err
	}
	builder.SetWorkers(e.config.Workers)

	return builder.Build(waveform)
}

// Extract returns the chord sequence of waveform sampled at sampleRate.
// Errors are *common.InputError for unusable input; no partial result is
// returned.
func (e *Extractor) Extract(waveform []float64, sampleRate int) (*Result, error) {
	logger := e.logger.WithFields(logging.Fields{
		"function":    "Extract",
		"samples":     len(waveform),
		"sample_rate": sampleRate,
	})

	startTime := time.Now()

	chromagram, err := e.Chromagram(waveform, sampleRate)
	if err != nil {
		logger.Error(err, "Failed to compute chromagram")
		return nil, fmt.Errorf("chromagram: %w", err)
	}

	labels, err := e.classifier.Classify(chromagram)
	if err != nil {
		logger.Error(err, "Failed to classify frames")
		return nil, fmt.Errorf("classify: %w", err)
	}

	segmenter, err := tonal.NewSegmenter(e.config.HopSize, sampleRate, e.config.MinSegmentDuration)
	if err != nil {
		return nil, err
	}
	segments := segmenter.Segment(labels)

	result := &Result{
		Chords:       tonal.Labels(segments),
		Segments:     segments,
		Labels:       labels,
		Frames:       chromagram.Frames(),
		SilentFrames: chromagram.SilentFrames(),
		SampleRate:   sampleRate,
		Duration:     time.Duration(len(waveform)) * time.Second / time.Duration(sampleRate),
		Profile:      chromagram.Summarize(),
	}

	if result.SilentFrames > 0 {
		logger.Warn("Frames with no energy above the cutoff", logging.Fields{
			"silent_frames": result.SilentFrames,
			"frames":        result.Frames,
		})
	}

	logger.Info("Chords extracted", logging.Fields{
		"frames":       result.Frames,
		"segments":     len(segments),
		"extract_time": time.Since(startTime).Seconds(),
	})

	return result, nil
}
