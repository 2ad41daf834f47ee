package extraction

import (
	"bytes"
	"testing"

	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

type noteOn struct {
	key  uint8
	time int64 // microseconds
}

func readNoteOns(t *testing.T, data []byte) []noteOn {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	var notes []noteOn
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if event.Message.GetNoteOn(&channel, &key, &velocity) {
				notes = append(notes, noteOn{key: key, time: s.TimeAt(absTicks)})
			}
		}
	}
	return notes
}

func TestWriteMIDI(t *testing.T) {
	library, err := tonal.DefaultTemplateLibrary()
	require.NoError(t, err)
	c, _ := library.Lookup("C")
	am, _ := library.Lookup("Am")

	segments := []tonal.Segment{
		{Label: "C", Index: c, Start: 0, End: 1},
		{Label: "N", Index: tonal.SilenceIndex, Start: 1, End: 1.25},
		{Label: "Am", Index: am, Start: 1.5, End: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, segments, library))

	notes := readNoteOns(t, buf.Bytes())
	assert.Equal(t, []noteOn{
		{60, 0}, {64, 0}, {67, 0},
		{60, 1500000}, {64, 1500000}, {69, 1500000},
	}, notes)
}

func TestChordKeys(t *testing.T) {
	assert.Equal(t, []uint8{61, 64, 69}, ChordKeys([]float64{0, 1, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0}))
	assert.Empty(t, ChordKeys(make([]float64, 12)))
}
