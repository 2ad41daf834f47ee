package main

import (
	"bytes"
	"testing"

	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"github.com/RyanBlaney/sonido-chords/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExportedTemplatesReload(t *testing.T) {
	library, err := tonal.DefaultTemplateLibrary()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, yaml.NewEncoder(&buf).Encode(exportLibrary(library)))

	entries, err := tonal.LoadTemplateEntries(&buf)
	require.NoError(t, err)
	reloaded, err := tonal.NewTemplateLibrary(entries)
	require.NoError(t, err)

	assert.Equal(t, library.Names(), reloaded.Names())
	for i := range library.Len() {
		assert.InDeltaSlice(t, library.Template(i).Pattern, reloaded.Template(i).Pattern, 1e-12)
	}
}

func TestActivePitchClasses(t *testing.T) {
	library, err := tonal.DefaultTemplateLibrary()
	require.NoError(t, err)

	am, ok := library.Lookup("Am")
	require.True(t, ok)
	assert.Equal(t, []string{"C", "E", "A"}, activePitchClasses(library.Template(am).Pattern))
}

func TestPrintResult(t *testing.T) {
	result := &extraction.Result{
		Chords: []string{"C", "G"},
		Segments: []tonal.Segment{
			{Label: "C", Start: 0, End: 1.5},
			{Label: "G", Start: 1.5, End: 3},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, result))
	assert.Equal(t, "C, G\n", buf.String())

	showTimes = true
	defer func() { showTimes = false }()
	buf.Reset()
	require.NoError(t, printResult(&buf, result))
	assert.Equal(t, "   0.000    1.500  C\n   1.500    3.000  G\n", buf.String())
}

func TestSetupLoggingRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, setupLogging("loud", "text"))
	assert.NoError(t, setupLogging("debug", "json"))
}

func TestLoadConfigReadsChromaFlag(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("chroma", "cqt"))
	defer rootCmd.PersistentFlags().Set("chroma", "stft")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "cqt", cfg.ChromaMethod)

	require.NoError(t, rootCmd.PersistentFlags().Set("chroma", "wavelet"))
	_, err = loadConfig()
	assert.Error(t, err)
}
