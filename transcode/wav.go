package transcode

import (
	"io"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DecodeWAV reads a PCM WAV stream, averages its channels to mono and
// scales samples into [-1, 1) by the source bit depth
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, common.NewInputError("invalid WAV data")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, common.NewInputError("could not read PCM buffer: %v", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, common.NewInputError("WAV data has no usable format chunk")
	}

	pcm := Downmix(buf)

	return &AudioData{
		PCM:        pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Duration:   samplesToDuration(len(pcm), buf.Format.SampleRate),
	}, nil
}

// Downmix averages the interleaved channels of buf into one float64 channel
func Downmix(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := range frames {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c]
		}
		out[i] = float64(sum) * scale / float64(channels)
	}
	return out
}
