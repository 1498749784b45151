// Package server exposes the overlay HTTP surface: health probes, the JSON
// overlay endpoint and the static overlay page for browser sources.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrChallah/cxhunt/internal/repository"
	"github.com/MrChallah/cxhunt/internal/service"
	"github.com/rs/zerolog"
)

type OverlayServer struct {
	svc    *service.OverlayService
	store  *repository.OverlayStore
	logger zerolog.Logger
}

func NewOverlayServer(svc *service.OverlayService, store *repository.OverlayStore, logger zerolog.Logger) *OverlayServer {
	return &OverlayServer{
		svc:    svc,
		store:  store,
		logger: logger.With().Str("component", "server").Logger(),
	}
}

// Register attaches all routes to mux.
func (s *OverlayServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /overlay/{slug}", s.handleOverlay)
}

func (s *OverlayServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleOverlay serves the merged JSON payload when format=json is
// requested, and the static overlay page otherwise. A failed pipeline run
// falls back to the last good payload for the slug; without one the client
// gets a uniform 502.
func (s *OverlayServer) handleOverlay(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	if !strings.EqualFold(r.URL.Query().Get("format"), "json") {
		s.serveOverlayPage(w)
		return
	}

	payload, err := s.svc.BuildOverlay(r.Context(), slug)
	if err != nil {
		if stale, ok := s.store.Stale(slug); ok {
			s.logger.Warn().Err(err).Str("slug", slug).Msg("serving stale overlay")
			s.writeJSON(w, http.StatusOK, stale)
			return
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("overlay failed with no stale fallback")
		s.writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "Upstream failed",
			"detail": err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, payload)
}

func (s *OverlayServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write response")
	}
}
