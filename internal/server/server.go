// Package server exposes the tutor over HTTP. The transport is thin: it
// resolves the learner's session, delegates to the orchestrator, and
// serializes the turn result.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/mltutor/internal/mastery"
	"github.com/abhisek/mltutor/internal/retrieval"
	"github.com/abhisek/mltutor/internal/tutor"
)

// learnerHeader names the caller's learner identity. Absent means the
// single-learner default, matching the original single-session design.
const (
	learnerHeader  = "X-Learner-ID"
	defaultLearner = "default"
)

// Server handles the tutor's HTTP API.
type Server struct {
	registry  *tutor.Registry
	retriever retrieval.Retriever
	logger    *slog.Logger
}

// New creates a server. retriever may be nil; /ask then reports the
// capability as unavailable.
func New(registry *tutor.Registry, retriever retrieval.Retriever, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, retriever: retriever, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/tutor", s.handleTutor)
	r.Post("/reset", s.handleReset)
	r.Post("/ask", s.handleAsk)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tutorRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleTutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := s.session(r)
	if err != nil {
		s.logger.Error("failed to create session", "error", err)
		http.Error(w, "system unavailable", http.StatusServiceUnavailable)
		return
	}

	result := session.Step(r.Context(), req.Answer)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.logger.Error("failed to create session", "error", err)
		http.Error(w, "system unavailable", http.StatusServiceUnavailable)
		return
	}

	session.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type askRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type askResult struct {
	Topic      string  `json:"topic"`
	Subtopic   string  `json:"subtopic"`
	Difficulty string  `json:"difficulty"`
	Relevance  float64 `json:"relevance"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.retriever == nil {
		http.Error(w, "retrieval is not configured", http.StatusServiceUnavailable)
		return
	}

	var req askRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.TopK <= 0 {
		req.TopK = 3
	}

	// Scope retrieval to the learner's current tier when a profile exists.
	difficulty := ""
	if session, err := s.session(r); err == nil {
		if session.Profile() != nil {
			difficulty = weakestTier(session.Scores())
		}
	}

	results, err := s.retriever.Retrieve(r.Context(), req.Query, req.TopK, difficulty)
	if err != nil {
		s.logger.Error("retrieval failed", "query", req.Query, "error", err)
		http.Error(w, "system unavailable", http.StatusServiceUnavailable)
		return
	}

	out := make([]askResult, len(results))
	for i, res := range results {
		out[i] = askResult{
			Topic:      res.Chunk.Topic,
			Subtopic:   res.Chunk.Subtopic,
			Difficulty: res.Chunk.Difficulty,
			Relevance:  res.Score,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) session(r *http.Request) (*tutor.Session, error) {
	learnerID := r.Header.Get(learnerHeader)
	if learnerID == "" {
		learnerID = defaultLearner
	}
	return s.registry.Session(learnerID)
}

// weakestTier maps the learner's minimum ledger score to a difficulty tier.
func weakestTier(scores map[string]float64) string {
	min := 1.0
	for _, v := range scores {
		if v < min {
			min = v
		}
	}
	return string(mastery.TierFor(min))
}

// decodeBody decodes a JSON request body. An empty body decodes to the
// zero value; the first tutoring turn has no answer to send.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
