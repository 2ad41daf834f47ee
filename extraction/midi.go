package extraction

import (
	"fmt"
	"io"
	"math"

	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// MIDITempo is the tempo (bpm) of exported MIDI files
	MIDITempo = 120.0

	midiResolution = smf.MetricTicks(480)
	chordVelocity  = 90
	chordBaseKey   = 60 // middle C
)

// WriteMIDI renders segments as block chords in a single-track SMF.
// Each segment holds the active pitch classes of its template, voiced
// upward from middle C, from Start to End. Silence segments are rests.
func WriteMIDI(w io.Writer, segments []tonal.Segment, library *tonal.TemplateLibrary) error {
	ticksPerSecond := float64(midiResolution) * MIDITempo / 60
	toTicks := func(seconds float64) uint32 {
		return uint32(math.Round(seconds * ticksPerSecond))
	}

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(MIDITempo))

	var cursor uint32
	for _, seg := range segments {
		if seg.Index < 0 || seg.Index >= library.Len() {
			continue
		}
		keys := ChordKeys(library.Template(seg.Index).Pattern)
		if len(keys) == 0 {
			continue
		}

		start := max(toTicks(seg.Start), cursor)
		end := max(toTicks(seg.End), start+1)

		for i, key := range keys {
			var delta uint32
			if i == 0 {
				delta = start - cursor
			}
			tr.Add(delta, midi.NoteOn(0, key, chordVelocity))
		}
		for i, key := range keys {
			var delta uint32
			if i == 0 {
				delta = end - start
			}
			tr.Add(delta, midi.NoteOff(0, key))
		}
		cursor = end
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = midiResolution
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("add midi track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// ChordKeys returns the MIDI keys of every pitch class with positive weight,
// in the octave starting at middle C
func ChordKeys(pattern []float64) []uint8 {
	var keys []uint8
	for pc, weight := range pattern {
		if weight > 0 {
			keys = append(keys, uint8(chordBaseKey+pc))
		}
	}
	return keys
}
