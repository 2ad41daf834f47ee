package main

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-chords/algorithms/chroma"
	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"github.com/RyanBlaney/sonido-chords/extraction"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportTemplates bool

func init() {
	templatesCmd.Flags().BoolVar(&exportTemplates, "export", false, "print the table as YAML usable with --templates")
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the active chord templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		library, err := extraction.LoadLibrary(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if exportTemplates {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(exportLibrary(library)); err != nil {
				return err
			}
			return enc.Close()
		}

		for i := range library.Len() {
			tmpl := library.Template(i)
			fmt.Fprintf(out, "%3d  %-10s %s\n", tmpl.Index, tmpl.Name, strings.Join(activePitchClasses(tmpl.Pattern), " "))
		}
		return nil
	},
}

type exportedTable struct {
	Templates []tonal.TemplateEntry `yaml:"templates"`
}

func exportLibrary(library *tonal.TemplateLibrary) exportedTable {
	table := exportedTable{Templates: make([]tonal.TemplateEntry, library.Len())}
	for i := range library.Len() {
		tmpl := library.Template(i)
		table.Templates[i] = tonal.TemplateEntry{Name: tmpl.Name, Vector: tmpl.Pattern}
	}
	return table
}

func activePitchClasses(pattern []float64) []string {
	var names []string
	for pc, w := range pattern {
		if w > 0 {
			names = append(names, chroma.PitchClassNames[pc])
		}
	}
	return names
}
