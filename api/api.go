// Package api exposes the extraction engine over HTTP. One request is
// one document; the response body is the same JSON contract the batch
// driver writes to files.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brunobiangulo/outliner"
)

// maxUploadBytes bounds document uploads (50 MB).
const maxUploadBytes = 50 << 20

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	engine *outliner.Engine
	log    *slog.Logger
}

// NewServer wires the routes.
func NewServer(engine *outliner.Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{engine: engine, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))

	r.Get("/health", s.handleHealth)
	r.Post("/extract", s.handleExtract)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract accepts a multipart upload under the "document" field and
// responds with the extraction result. Fallback extractions still return
// 200 with a well-formed body; the X-Extraction-Fallback header flags
// them.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("document")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing document upload"})
		return
	}
	defer file.Close()

	// Sources read from the filesystem; stage the upload in a temp file
	// that keeps the original extension for format routing.
	tmp, err := os.CreateTemp("", "outliner-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "staging upload"})
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "staging upload"})
		return
	}
	tmp.Close()

	res, extractErr := s.engine.ExtractFile(r.Context(), tmp.Name())
	if extractErr != nil {
		s.log.Warn("extraction fell back", "filename", header.Filename, "error", extractErr)
		w.Header().Set("X-Extraction-Fallback", "true")
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

// requestLogger logs each request with method, path, status, and
// duration.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
