// Package api exposes the operational HTTP surface: liveness, readiness,
// Prometheus metrics, and a read-only view of the traversal state.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tpbkitchens/maintsync/internal/metrics"
	"github.com/tpbkitchens/maintsync/internal/state"
)

// Server wires HTTP handlers to the state store.
type Server struct {
	router chi.Router
	states state.Store
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(states state.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		states: states,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.getState)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.states.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "state store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// stateResponse augments the raw state with derived counts operators ask for.
type stateResponse struct {
	state.TraversalState
	Remaining int `json:"remaining"`
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	st, err := s.states.Load(r.Context())
	if err != nil {
		s.logger.Error("state load failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "state store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		TraversalState: st,
		Remaining:      st.Remaining(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
