// Package api exposes the deal pipeline over HTTP: a small JSON surface
// for the dashboard plus a websocket feed for live opportunity pushes.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/bus"
	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/internal/store"
)

// Scanner triggers an out-of-schedule intake pass.
type Scanner interface {
	TriggerNow()
}

// Server handles dashboard requests against the deal store.
type Server struct {
	store   store.Store
	bus     *bus.Bus
	scanner Scanner
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins restricts CORS to the given origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

func New(st store.Store, b *bus.Bus, scanner Scanner, opts ...Option) *Server {
	s := &Server{store: st, bus: b, scanner: scanner, origins: []string{"*"}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/opportunities", s.handleListOpportunities)
	r.Get("/opportunities/{id}", s.handleGetOpportunity)
	r.Post("/opportunities/{id}/status", s.handleUpdateStatus)
	r.Post("/scan", s.handleScan)
	r.Get("/ws", s.handleWebsocket)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	filter := store.DealFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		if !model.ValidDealStatus(status) {
			respondError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = model.DealStatus(status)
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	deals, err := s.store.List(r.Context(), filter)
	if err != nil {
		zap.L().Error("listing deals failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if deals == nil {
		deals = []model.DealSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(deals),
		"deals": deals,
	})
}

func (s *Server) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deal, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "opportunity not found")
		return
	}
	if err != nil {
		zap.L().Error("fetching deal failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidDealStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	err := s.store.UpdateStatus(r.Context(), id, model.DealStatus(req.Status))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "opportunity not found")
		return
	}
	if err != nil {
		zap.L().Error("status update failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.scanner.TriggerNow()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("response encode failed", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
