// Package httpapi exposes the operational HTTP surface: health probes,
// Prometheus metrics and a small status endpoint.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olgafebr/mira/internal/deck"
	"github.com/olgafebr/mira/internal/flow"
	"github.com/olgafebr/mira/internal/observability"
)

type Server struct {
	catalog   *deck.Catalog
	states    *flow.Store
	startedAt time.Time
}

func New(catalog *deck.Catalog, states *flow.Store) *Server {
	return &Server{
		catalog:   catalog,
		states:    states,
		startedAt: time.Now().UTC(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", metricsHandler)
	r.Get("/v1/status", s.handleStatus)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ready",
		"tarot_cards": len(s.catalog.Tarot),
		"mind_cards":  len(s.catalog.Mind),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"tarot_cards":    len(s.catalog.Tarot),
		"mind_cards":     len(s.catalog.Mind),
		"known_users":    s.states.Count(),
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	observability.MetricsHandler().ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
