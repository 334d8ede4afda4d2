// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/Qwealzy/roots-of-sentient/internal/app"
)

// Word mirrors the read shape returned by listing queries.
type Word = service.WordView

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ListWords returns every word with its resolved coordinate and
	// placement, reconciling entries that lack one.
	ListWords(ctx context.Context) ([]Word, error)

	// Contribute validates and stores a new word.
	Contribute(ctx context.Context, in service.Contribution) (Word, error)

	// DeleteWord removes a word owned by the given token.
	DeleteWord(ctx context.Context, id, ownerToken string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	wordsHandler  *WordsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		wordsHandler:  NewWordsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/words", MetricsMiddleware(s.wordsHandler.HandleWords, "words"))
}

type wordsResponse struct {
	Words []Word `json:"words"`
}

type wordResponse struct {
	Word Word `json:"word"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
