package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/logging"
)

// DefaultMinSegmentDuration is the shortest run, in seconds, that is reported
const DefaultMinSegmentDuration = 0.1

// Segment is a maximal run of frames sharing one label.
// EndFrame is exclusive; End is the time the next run begins.
type Segment struct {
	Label      string  `json:"label"`
	Index      int     `json:"index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"`
}

// Duration returns End - Start in seconds
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Segmenter collapses per-frame labels into chord segments.
//
// Runs shorter than the minimum duration are dropped outright, except the
// final run which is always kept. A dropped run does not stretch its
// neighbours, so the output can have gaps in time.
type Segmenter struct {
	hopSize     int
	sampleRate  int
	minDuration float64
	logger      logging.Logger
}

// NewSegmenter creates a segmenter converting frame indices to seconds with hopSize/sampleRate
func NewSegmenter(hopSize, sampleRate int, minDuration float64) (*Segmenter, error) {
	if hopSize <= 0 {
		return nil, common.NewConfigurationError("hop_size", "must be positive, got %d", hopSize)
	}
	if sampleRate <= 0 {
		return nil, common.NewInputError("sample rate must be positive, got %d", sampleRate)
	}
	if minDuration < 0 || math.IsNaN(minDuration) || math.IsInf(minDuration, 0) {
		return nil, common.NewConfigurationError("min_segment_duration", "must be a finite non-negative duration, got %v", minDuration)
	}

	return &Segmenter{
		hopSize:     hopSize,
		sampleRate:  sampleRate,
		minDuration: minDuration,
		logger: logging.WithFields(logging.Fields{
			"component": "segmenter",
		}),
	}, nil
}

// FrameTime converts a frame index to seconds
func (s *Segmenter) FrameTime(frame int) float64 {
	return float64(frame*s.hopSize) / float64(s.sampleRate)
}

// Runs returns every maximal run of identical labels with no filtering.
// The runs cover all frames, in order, without gaps or overlaps.
func (s *Segmenter) Runs(labels []FrameLabel) []Segment {
	if len(labels) == 0 {
		return nil
	}

	var runs []Segment
	start := 0
	for i := 1; i <= len(labels); i++ {
		if i < len(labels) && labels[i].Index == labels[start].Index {
			continue
		}
		runs = append(runs, Segment{
			Label:      labels[start].Name,
			Index:      labels[start].Index,
			Start:      s.FrameTime(start),
			End:        s.FrameTime(i),
			StartFrame: start,
			EndFrame:   i,
		})
		start = i
	}
	return runs
}

// Segment walks the labels and emits a segment each time the label changes,
// keeping the finished run only if it lasted at least the minimum duration.
// The last run is emitted unconditionally.
func (s *Segmenter) Segment(labels []FrameLabel) []Segment {
	runs := s.Runs(labels)
	if len(runs) == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(runs))
	dropped := 0
	for i, run := range runs {
		if i == len(runs)-1 || run.Duration() >= s.minDuration {
			segments = append(segments, run)
			continue
		}
		dropped++
	}

	s.logger.Debug("Labels segmented", logging.Fields{
		"frames":   len(labels),
		"runs":     len(runs),
		"segments": len(segments),
		"dropped":  dropped,
	})

	return segments
}

// Labels returns the chord names of segments in order
func Labels(segments []Segment) []string {
	names := make([]string, len(segments))
	for i, seg := range segments {
		names[i] = seg.Label
	}
	return names
}
