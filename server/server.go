package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RyanBlaney/sonido-chords/algorithms/common"
	"github.com/RyanBlaney/sonido-chords/algorithms/tonal"
	"github.com/RyanBlaney/sonido-chords/extraction"
	"github.com/RyanBlaney/sonido-chords/logging"
	"github.com/RyanBlaney/sonido-chords/transcode"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// DefaultMaxBodyBytes caps uploaded audio at 64 MiB
const DefaultMaxBodyBytes int64 = 64 << 20

// RequestIDHeader carries the id assigned to each extraction request
const RequestIDHeader = "X-Request-ID"

type ErrorResponse struct {
	Error string `json:"detail"`
}

type ExtractResponse struct {
	ID           string          `json:"id"`
	Chords       []string        `json:"chords"`
	Segments     []tonal.Segment `json:"segments"`
	Frames       int             `json:"frames"`
	SilentFrames int             `json:"silent_frames"`
	SampleRate   int             `json:"sample_rate"`
	Duration     float64         `json:"duration"`
}

type TemplatesResponse struct {
	Templates []string `json:"templates"`
}

// Options tunes the HTTP layer
type Options struct {
	MaxBodyBytes   int64
	AllowedOrigins []string // empty allows any origin
}

// Server exposes chord extraction over HTTP
type Server struct {
	extractor *extraction.Extractor
	decoder   *transcode.Decoder
	options   Options
	logger    logging.Logger
}

// New creates a server around extractor and decoder
func New(extractor *extraction.Extractor, decoder *transcode.Decoder, options Options) *Server {
	if options.MaxBodyBytes <= 0 {
		options.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		extractor: extractor,
		decoder:   decoder,
		options:   options,
		logger: logging.WithFields(logging.Fields{
			"component": "http_server",
		}),
	}
}

// Handler returns the routed, CORS-wrapped handler
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	router.HandleFunc("/templates", s.handleTemplates).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	origins := s.options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(router)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)

	ctx := logging.ContextWithFields(r.Context(), logging.Fields{"request_id": id})
	logger := s.logger.WithContext(ctx)

	body := http.MaxBytesReader(w, r.Body, s.options.MaxBodyBytes)
	audio, err := s.decoder.DecodeReader(ctx, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		logger.Warn("Could not decode upload", logging.Fields{"error": err.Error()})
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.extractor.Extract(audio.PCM, audio.SampleRate)
	if err != nil {
		status := http.StatusInternalServerError
		if common.IsInputError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	logger.Info("Extraction served", logging.Fields{
		"chords":   len(result.Chords),
		"duration": audio.Duration.Seconds(),
	})

	writeJSON(w, http.StatusOK, ExtractResponse{
		ID:           id,
		Chords:       result.Chords,
		Segments:     result.Segments,
		Frames:       result.Frames,
		SilentFrames: result.SilentFrames,
		SampleRate:   result.SampleRate,
		Duration:     result.Duration.Seconds(),
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TemplatesResponse{Templates: s.extractor.Library().Names()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error(err, "Failed to write JSON response", logging.Fields{
			"status": status,
		})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
