package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"github.com/RyanBlaney/sonido-chords/extraction"
	"github.com/RyanBlaney/sonido-chords/logging"
	"github.com/RyanBlaney/sonido-chords/transcode"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wavBytes(t *testing.T, data []int, sampleRate int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.wav")
	out, err := os.Create(path)
	require.NoError(t, err)

	encoder := wav.NewEncoder(out, sampleRate, 16, 1, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())
	require.NoError(t, out.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return raw
}

func sineWAV(t *testing.T, freq float64, samples, sampleRate int) []byte {
	data := make([]int, samples)
	for i := range data {
		data[i] = int(12000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return wavBytes(t, data, sampleRate)
}

func newTestServer(t *testing.T, options Options) http.Handler {
	t.Helper()
	lib, err := tonal.NewTemplateLibrary([]tonal.TemplateEntry{
		{Name: "A_major", Root: "A", Intervals: []int{0, 4, 7}},
		{Name: "C_major", Root: "C", Intervals: []int{0, 4, 7}},
	})
	require.NoError(t, err)

	extractor, err := extraction.New(nil, lib)
	require.NoError(t, err)
	return New(extractor, transcode.NewDecoder(nil), options).Handler()
}

func TestExtractEndpoint(t *testing.T) {
	handler := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(sineWAV(t, 440, 22050, 22050)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A_major"}, resp.Chords)
	assert.Equal(t, 36, resp.Frames)
	assert.Equal(t, 22050, resp.SampleRate)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, resp.ID, rec.Header().Get(RequestIDHeader))
}

func TestExtractResamplesUpload(t *testing.T) {
	handler := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(sineWAV(t, 440, 44100, 44100)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 22050, resp.SampleRate)
	assert.Equal(t, 36, resp.Frames)
	assert.Equal(t, []string{"A_major"}, resp.Chords)
}

func TestExtractRejectsShortUpload(t *testing.T) {
	handler := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(sineWAV(t, 440, 1000, 22050)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "shorter than one frame")
}

func TestExtractRejectsEmptyBody(t *testing.T) {
	handler := newTestServer(t, Options{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractBodyLimit(t *testing.T) {
	handler := newTestServer(t, Options{MaxBodyBytes: 1024})

	req := httptest.NewRequest(http.MethodPost, "/extract", bytes.NewReader(sineWAV(t, 440, 22050, 22050)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestTemplatesEndpoint(t *testing.T) {
	handler := newTestServer(t, Options{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TemplatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A_major", "C_major"}, resp.Templates)
}

func TestHealthAndMethods(t *testing.T) {
	handler := newTestServer(t, Options{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extract", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestServer(t, Options{AllowedOrigins: []string{"https://chordcraft.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/extract", nil)
	req.Header.Set("Origin", "https://chordcraft.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://chordcraft.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	l := logrus.New()
	l.SetOutput(&logs)
	previous := logging.GetGlobalLogger()
	logging.SetGlobalLogger(logging.NewLogrusLogger(l))
	defer logging.SetGlobalLogger(previous)

	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"score": math.NaN()})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "Failed to write JSON response")
}
