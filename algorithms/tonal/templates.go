package tonal

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// TemplateEntry is one row of a template table as supplied by configuration.
// Either Vector (12 non-negative weights, C first) or Root plus Intervals
// (semitones above the root, expanded to a binary profile) must be set.
type TemplateEntry struct {
	Name      string    `yaml:"name" json:"name"`
	Vector    []float64 `yaml:"vector,omitempty" json:"vector,omitempty"`
	Root      string    `yaml:"root,omitempty" json:"root,omitempty"`
	Intervals []int     `yaml:"intervals,omitempty" json:"intervals,omitempty"`
}

// templateFile is the document layout read by LoadTemplateEntries
type templateFile struct {
	Templates []TemplateEntry `yaml:"templates"`
}

// ChordTemplate is a named unit-norm pitch-class profile
type ChordTemplate struct {
	Index   int       `json:"index"`
	Name    string    `json:"name"`
	Pattern []float64 `json:"pattern"`
}

// TemplateLibrary is an ordered, read-only set of chord templates.
// Its size and dimensionality never change after construction, so one
// library can be shared by any number of goroutines.
type TemplateLibrary struct {
	templates []ChordTemplate
	index     map[string]int
	matrix    *mat.Dense // M x 12, row i = template i
}

// majorPattern and minorPattern are root-position triads, root at C
var (
	majorPattern = []float64{1.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 0.0}
	minorPattern = []float64{1.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 0.0}
)

// NewTemplateLibrary validates and normalizes entries. It fails with a
// *common.ConfigurationError on an empty table, a wrong dimensionality,
// negative or non-finite weights, duplicate names or a zero vector.
func NewTemplateLibrary(entries []TemplateEntry) (*TemplateLibrary, error) {
	if len(entries) == 0 {
		return nil, common.NewConfigurationError("templates", "template table is empty")
	}

	lib := &TemplateLibrary{
		templates: make([]ChordTemplate, 0, len(entries)),
		index:     make(map[string]int, len(entries)),
		matrix:    mat.NewDense(len(entries), chroma.NumPitchClasses, nil),
	}

	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, common.NewConfigurationError("templates", "entry %d has no name", i)
		}
		if _, dup := lib.index[name]; dup {
			return nil, common.NewConfigurationError("templates", "duplicate template name %q", name)
		}

		pattern, err := resolvePattern(entry)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		if !common.L2NormalizeInPlace(pattern) {
			return nil, common.NewConfigurationError("templates", "template %q is a zero vector and cannot be normalized", name)
		}

		lib.index[name] = i
		lib.templates = append(lib.templates, ChordTemplate{Index: i, Name: name, Pattern: pattern})
		lib.matrix.SetRow(i, pattern)
	}

	return lib, nil
}

// resolvePattern turns an entry into a raw 12-dimensional weight vector
func resolvePattern(entry TemplateEntry) ([]float64, error) {
	hasVector := len(entry.Vector) > 0
	hasIntervals := entry.Root != "" || len(entry.Intervals) > 0

	switch {
	case hasVector && hasIntervals:
		return nil, common.NewConfigurationError("templates", "set either vector or root/intervals, not both")
	case hasVector:
		if len(entry.Vector) != chroma.NumPitchClasses {
			return nil, common.NewConfigurationError("templates", "vector has %d dimensions, want %d", len(entry.Vector), chroma.NumPitchClasses)
		}
		pattern := make([]float64, chroma.NumPitchClasses)
		for i, w := range entry.Vector {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, common.NewConfigurationError("templates", "weight %d is %v, want a finite non-negative value", i, w)
			}
			pattern[i] = w
		}
		return pattern, nil
	case hasIntervals:
		root, err := ParsePitchClass(entry.Root)
		if err != nil {
			return nil, err
		}
		if len(entry.Intervals) == 0 {
			return nil, common.NewConfigurationError("templates", "root %q given without intervals", entry.Root)
		}
		pattern := make([]float64, chroma.NumPitchClasses)
		for _, interval := range entry.Intervals {
			pattern[((root+interval)%chroma.NumPitchClasses+chroma.NumPitchClasses)%chroma.NumPitchClasses] = 1.0
		}
		return pattern, nil
	default:
		return nil, common.NewConfigurationError("templates", "entry has neither vector nor root/intervals")
	}
}

// ParsePitchClass parses a note name such as "C", "F#" or "Bb" into 0..11
func ParsePitchClass(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, common.NewConfigurationError("templates", "empty root note")
	}

	base := map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
	pc, ok := base[strings.ToUpper(name[:1])[0]]
	if !ok {
		return 0, common.NewConfigurationError("templates", "unknown root note %q", name)
	}
	for _, accidental := range name[1:] {
		switch accidental {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return 0, common.NewConfigurationError("templates", "unknown root note %q", name)
		}
	}
	return (pc%chroma.NumPitchClasses + chroma.NumPitchClasses) % chroma.NumPitchClasses, nil
}

// rotatePattern shifts a root-at-C pattern up by semitones
func rotatePattern(pattern []float64, semitones int) []float64 {
	rotated := make([]float64, len(pattern))
	for i, v := range pattern {
		rotated[(i+semitones)%len(pattern)] = v
	}
	return rotated
}

// DefaultTemplateEntries returns the 24 major and minor triads: the twelve
// major chords C..B named by their root, followed by the twelve minor chords
// named with an "m" suffix.
func DefaultTemplateEntries() []TemplateEntry {
	entries := make([]TemplateEntry, 0, 2*chroma.NumPitchClasses)
	for root, name := range chroma.PitchClassNames {
		entries = append(entries, TemplateEntry{Name: name, Vector: rotatePattern(majorPattern, root)})
	}
	for root, name := range chroma.PitchClassNames {
		entries = append(entries, TemplateEntry{Name: name + "m", Vector: rotatePattern(minorPattern, root)})
	}
	return entries
}

// DefaultTemplateLibrary builds the library from DefaultTemplateEntries
func DefaultTemplateLibrary() (*TemplateLibrary, error) {
	return NewTemplateLibrary(DefaultTemplateEntries())
}

// LoadTemplateEntries decodes a YAML (or JSON) document of the form
//
//	templates:
//	  - name: A_major
//	    vector: [0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0]
//	  - name: Cmaj7
//	    root: C
//	    intervals: [0, 4, 7, 11]
//
// Document order is preserved.
func LoadTemplateEntries(r io.Reader) ([]TemplateEntry, error) {
	var doc templateFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.NewConfigurationError("templates", "template document is empty")
		}
		return nil, &common.ConfigurationError{Field: "templates", Reason: err.Error()}
	}
	return doc.Templates, nil
}

// LoadTemplateLibrary reads and validates a template table from path
func LoadTemplateLibrary(path string) (*TemplateLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template table: %w", err)
	}
	defer f.Close()

	entries, err := LoadTemplateEntries(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read template table %s: %w", path, err)
	}
	return NewTemplateLibrary(entries)
}

// Len returns the number of templates
func (l *TemplateLibrary) Len() int {
	return len(l.templates)
}

// Template returns template i. The returned pattern is a copy.
func (l *TemplateLibrary) Template(i int) ChordTemplate {
	t := l.templates[i]
	pattern := make([]float64, len(t.Pattern))
	copy(pattern, t.Pattern)
	t.Pattern = pattern
	return t
}

// Name returns the name of template i
func (l *TemplateLibrary) Name(i int) string {
	return l.templates[i].Name
}

// Names returns the template names in library order
func (l *TemplateLibrary) Names() []string {
	names := make([]string, len(l.templates))
	for i, t := range l.templates {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the index of the template called name
func (l *TemplateLibrary) Lookup(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Matrix returns the M x 12 template matrix. Callers must not modify it.
func (l *TemplateLibrary) Matrix() mat.Matrix {
	return l.matrix
}
