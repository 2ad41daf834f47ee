package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-chords/extraction"
	"github.com/spf13/cobra"
)

var (
	labPath    string
	midiPath   string
	jsonOutput bool
	showTimes  bool
)

func init() {
	extractCmd.Flags().StringVar(&labPath, "lab", "", "also write segments to this chord-lab file")
	extractCmd.Flags().StringVar(&midiPath, "midi", "", "also write the chords as a MIDI file")
	extractCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
	extractCmd.Flags().BoolVar(&showTimes, "times", false, "print one segment per line with start and end times")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <audio>",
	Short: "Print the chord sequence of an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		extractor, err := extraction.New(cfg, nil)
		if err != nil {
			return err
		}

		audio, err := newDecoder(cfg).DecodeFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		result, err := extractor.Extract(audio.PCM, audio.SampleRate)
		if err != nil {
			return err
		}

		if labPath != "" {
			if err := writeFile(labPath, func(w io.Writer) error {
				return extraction.WriteLab(w, result.Segments)
			}); err != nil {
				return err
			}
		}
		if midiPath != "" {
			if err := writeFile(midiPath, func(w io.Writer) error {
				return extraction.WriteMIDI(w, result.Segments, extractor.Library())
			}); err != nil {
				return err
			}
		}

		return printResult(cmd.OutOrStdout(), result)
	},
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printResult(out io.Writer, result *extraction.Result) error {
	switch {
	case jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case showTimes:
		for _, seg := range result.Segments {
			if _, err := fmt.Fprintf(out, "%8.3f %8.3f  %s\n", seg.Start, seg.End, seg.Label); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(out, extraction.FormatSequence(result.Chords))
		return err
	}
}
