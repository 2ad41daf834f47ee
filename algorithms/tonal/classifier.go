package tonal

import (
	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/logging"
	"gonum.org/v1/gonum/mat"
)

// SilenceIndex marks a frame labelled with the silence sentinel instead of a template
const SilenceIndex = -1

// FrameLabel is the best-matching template for one chromagram column
type FrameLabel struct {
	Frame int     `json:"frame"`
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Classifier matches chromagram columns against a template library by
// cosine similarity. Both operands are unit vectors, so the similarity is
// a plain dot product.
type Classifier struct {
	library      *TemplateLibrary
	silenceLabel string
	logger       logging.Logger
}

// NewClassifier creates a classifier over library
func NewClassifier(library *TemplateLibrary) (*Classifier, error) {
	if library == nil || library.Len() == 0 {
		return nil, common.NewConfigurationError("templates", "classifier needs a non-empty template library")
	}
	return &Classifier{
		library: library,
		logger: logging.WithFields(logging.Fields{
			"component": "frame_classifier",
		}),
	}, nil
}

// SetSilenceLabel makes zero-energy frames take label instead of the
// tie-break winner. An empty label keeps the tie-break behaviour, where a
// zero column scores 0 against every template and the first template wins.
func (c *Classifier) SetSilenceLabel(label string) {
	c.silenceLabel = label
}

// Library returns the template library
func (c *Classifier) Library() *TemplateLibrary {
	return c.library
}

// Similarity returns the M x N matrix of template/frame similarities
func (c *Classifier) Similarity(chromagram *chroma.Chromagram) (*mat.Dense, error) {
	if chromagram == nil || chromagram.Frames() == 0 {
		return nil, common.NewInputError("chromagram has no frames")
	}
	for t, column := range chromagram.Columns {
		if len(column) != chroma.NumPitchClasses {
			return nil, common.NewInputError("chromagram column %d has %d bins, want %d", t, len(column), chroma.NumPitchClasses)
		}
	}

	var similarity mat.Dense
	similarity.Mul(c.library.Matrix(), chromagram.Matrix())
	return &similarity, nil
}

// Classify labels every column with its best template. Ties go to the
// lowest template index.
func (c *Classifier) Classify(chromagram *chroma.Chromagram) ([]FrameLabel, error) {
	similarity, err := c.Similarity(chromagram)
	if err != nil {
		c.logger.Error(err, "Cannot classify chromagram")
		return nil, err
	}

	_, frames := similarity.Dims()
	labels := make([]FrameLabel, frames)
	scores := make([]float64, c.library.Len())

	for t := range frames {
		if c.silenceLabel != "" && t < len(chromagram.Silent) && chromagram.Silent[t] {
			labels[t] = FrameLabel{Frame: t, Index: SilenceIndex, Name: c.silenceLabel}
			continue
		}

		mat.Col(scores, t, similarity)
		best := common.ArgMax(scores)
		labels[t] = FrameLabel{
			Frame: t,
			Index: best,
			Name:  c.library.Name(best),
			Score: scores[best],
		}
	}

	c.logger.Debug("Frames classified", logging.Fields{
		"frames":    frames,
		"templates": c.library.Len(),
	})

	return labels, nil
}
