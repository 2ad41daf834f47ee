package transcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/logging"
)

// AudioData is a decoded mono waveform
type AudioData struct {
	PCM        []float64      `json:"-"`
	SampleRate int            `json:"sample_rate"`
	Channels   int            `json:"channels"` // Channels in the source, before downmix
	Duration   time.Duration  `json:"duration"`
	Source     string         `json:"source,omitempty"`
	Metadata   *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata holds audio properties detected by ffprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"` // Rate every decoded waveform is resampled to
	MaxDuration      time.Duration `json:"max_duration"`       // 0 = no limit
	ResampleQuality  string        `json:"resample_quality"`   // "fast", "medium", "high"
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"` // Per ffmpeg/ffprobe invocation
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22050,
		MaxDuration:      0,
		ResampleQuality:  "medium",
		FFmpegPath:       "ffmpeg",  // Assume in PATH
		FFprobePath:      "ffprobe", // Assume in PATH
		Timeout:          30 * time.Second,
	}
}

// Decoder turns audio files and streams into mono float64 waveforms at
// TargetSampleRate. WAV input is decoded natively and resampled in process;
// anything else is handed to ffmpeg, which resamples it.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// Config returns the decoder configuration
func (d *Decoder) Config() *DecoderConfig {
	return d.config
}

// ValidateConfig validates the decoder configuration without touching ffmpeg
func (d *Decoder) ValidateConfig() error {
	if d.config.TargetSampleRate <= 0 {
		return common.NewConfigurationError("sample_rate", "target sample rate must be positive: %d", d.config.TargetSampleRate)
	}
	if d.config.Timeout <= 0 {
		return common.NewConfigurationError("timeout", "must be positive: %v", d.config.Timeout)
	}
	switch d.config.ResampleQuality {
	case "", "fast", "medium", "high":
	default:
		return common.NewConfigurationError("resample_quality", "unknown quality %q", d.config.ResampleQuality)
	}
	return nil
}

// DecodeFile decodes an audio file into a mono waveform
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	logger.Debug("Starting audio file decode")

	if IsWAVPath(filename) {
		file, err := os.Open(filename)
		if err != nil {
			logger.Error(err, "Failed to open audio file")
			return nil, fmt.Errorf("open %s: %w", filename, err)
		}
		defer file.Close()

		audio, err := DecodeWAV(file)
		if err != nil {
			logger.Error(err, "Failed to decode WAV file")
			return nil, err
		}
		audio.Source = filename
		d.conform(audio)
		return audio, nil
	}

	metadata, err := d.Probe(ctx, filename)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	audio, err := d.decodeWithFFmpeg(ctx, filename, nil, metadata)
	if err != nil {
		return nil, err
	}
	audio.Source = filename
	return audio, nil
}

// DecodeReader decodes audio from an io.Reader. RIFF/WAVE data is decoded
// natively, anything else through ffmpeg.
func (d *Decoder) DecodeReader(ctx context.Context, reader io.Reader) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeReader",
	})

	data, err := io.ReadAll(reader)
	if err != nil {
		logger.Error(err, "Failed to read data from reader")
		return nil, err
	}
	if len(data) == 0 {
		return nil, common.NewInputError("empty audio data")
	}

	logger.Debug("Data read from reader", logging.Fields{
		"data_size": len(data),
	})

	if IsWAVHeader(data) {
		audio, err := DecodeWAV(bytes.NewReader(data))
		if err != nil {
			logger.Error(err, "Failed to decode WAV data")
			return nil, err
		}
		d.conform(audio)
		return audio, nil
	}

	return d.decodeWithFFmpeg(ctx, "pipe:0", data, &AudioMetadata{})
}

// conform resamples natively decoded audio to TargetSampleRate and applies
// MaxDuration
func (d *Decoder) conform(audio *AudioData) {
	target := d.config.TargetSampleRate
	if target > 0 && audio.SampleRate > 0 && audio.SampleRate != target {
		lobes, ok := lanczosLobes[d.config.ResampleQuality]
		if !ok {
			lobes = lanczosLobes["medium"]
		}

		d.logger.Debug("Resampling WAV audio", logging.Fields{
			"from_rate": audio.SampleRate,
			"to_rate":   target,
			"lobes":     lobes,
		})

		audio.PCM = Resample(audio.PCM, audio.SampleRate, target, lobes)
		audio.SampleRate = target
		audio.Duration = samplesToDuration(len(audio.PCM), target)
	}
	d.trim(audio)
}

// trim applies MaxDuration to natively decoded audio
func (d *Decoder) trim(audio *AudioData) {
	if d.config.MaxDuration <= 0 || audio.SampleRate <= 0 {
		return
	}
	limit := int(d.config.MaxDuration.Seconds() * float64(audio.SampleRate))
	if limit < len(audio.PCM) {
		audio.PCM = audio.PCM[:limit]
		audio.Duration = samplesToDuration(len(audio.PCM), audio.SampleRate)
	}
}

// IsWAVPath reports whether filename has a WAV extension
func IsWAVPath(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		return true
	}
	return false
}

// IsWAVHeader reports whether data starts with a RIFF/WAVE header
func IsWAVHeader(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// GetSupportedFormats returns a list of formats this decoder accepts
func (d *Decoder) GetSupportedFormats() []string {
	return []string{
		"wav", "aac", "mp3", "flac", "ogg", "opus", "m4a", "wma",
		"webm", "mp4", "mov", "mkv",
	}
}

func samplesToDuration(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
