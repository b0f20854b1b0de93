// Package rest exposes the catalogue services over HTTP.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/acoustic-print/internal/core/services"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
	"github.com/ewilliams-labs/acoustic-print/internal/worker"
)

// Handler serves the catalogue API over chi.
type Handler struct {
	svc    *services.Orchestrator
	pool   *worker.Pool
	router chi.Router
	log    zerolog.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes. pool may be
// nil, which disables POST /import.
func NewHandler(svc *services.Orchestrator, pool *worker.Pool) *Handler {
	h := &Handler{
		svc:    svc,
		pool:   pool,
		router: chi.NewRouter(),
		log:    logging.Component("rest"),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	r := h.router
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(recordMetrics)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/features", h.ListFeatures)

	r.Route("/tracks", func(r chi.Router) {
		r.Get("/", h.ListTracks)
		r.Get("/random/fingerprint", h.RandomFingerprint)
		r.Get("/{id}/fingerprint", h.TrackFingerprint)
		r.Get("/{id}/comparison", h.TrackComparison)
	})

	r.Route("/albums", func(r chi.Router) {
		r.Get("/", h.ListAlbums)
		r.Get("/{id}", h.GetAlbum)
		r.Get("/{id}/recommendations", h.AlbumRecommendations)
	})

	r.Post("/import", h.Import)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListFeatures handles GET /features
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Features())
}

type importResponse struct {
	Queued  int `json:"queued"`
	Dropped int `json:"dropped"`
}

// Import handles POST /import. Jobs run in the background; a full queue
// drops the rest.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		writeErrorWithCode(w, http.StatusNotImplemented, "feature import not configured", errCodeNotImplemented)
		return
	}
	queued, dropped, err := h.pool.SubmitMissing(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, importResponse{Queued: queued, Dropped: dropped})
}
