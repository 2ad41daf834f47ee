package extraction

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
)

// WriteLab writes segments in the chord-lab format: one
// "start<TAB>end<TAB>label" line per segment, times in seconds.
func WriteLab(w io.Writer, segments []tonal.Segment) error {
	bw := bufio.NewWriter(w)
	for _, seg := range segments {
		if _, err := fmt.Fprintf(bw, "%.3f\t%.3f\t%s\n", seg.Start, seg.End, seg.Label); err != nil {
			return fmt.Errorf("write lab line: %w", err)
		}
	}
	return bw.Flush()
}

// FormatSequence renders chord names as a single comma-separated line
func FormatSequence(chords []string) string {
	return strings.Join(chords, ", ")
}
