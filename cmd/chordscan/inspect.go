package main

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/extraction"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <audio>",
	Short: "Summarise the chromagram of an audio file",
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

		chromagram, err := extractor.Chromagram(audio.PCM, audio.SampleRate)
		if err != nil {
			return err
		}
		summary := chromagram.Summarize()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "file:          %s\n", args[0])
		fmt.Fprintf(out, "sample rate:   %d Hz (%d source channels)\n", audio.SampleRate, audio.Channels)
		fmt.Fprintf(out, "duration:      %.2f s\n", audio.Duration.Seconds())
		fmt.Fprintf(out, "frames:        %d (%d silent)\n", summary.Frames, summary.SilentFrames)
		fmt.Fprintf(out, "dominant:      %s\n", summary.Dominant)
		fmt.Fprintf(out, "entropy:       %.3f nats\n\n", summary.Entropy)

		for pc, mean := range summary.MeanProfile {
			bar := strings.Repeat("#", int(mean*40+0.5))
			fmt.Fprintf(out, "%-3s %.3f ±%.3f %s\n", chroma.PitchClassNames[pc], mean, summary.StdProfile[pc], bar)
		}
		return nil
	},
}
