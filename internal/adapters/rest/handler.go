// Package rest exposes the compatibility service over HTTP.
package rest

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/mashability/internal/core/ports"
	"github.com/ewilliams-labs/mashability/internal/core/services"
)

// JobQueue accepts background cache-warming jobs.
type JobQueue interface {
	Submit(songID string) (string, bool)
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Compatibility
	jobs   JobQueue
	checks map[string]ports.Pinger
	log    *zap.SugaredLogger
	router *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes. jobs may be
// nil, which disables prefetching. checks are pinged by GET /ready.
func NewHandler(svc *services.Compatibility, jobs JobQueue, log *zap.SugaredLogger, checks map[string]ports.Pinger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	h := &Handler{
		svc:    svc,
		jobs:   jobs,
		checks: checks,
		log:    log,
		router: http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /ready", h.ReadinessCheck)

	h.router.HandleFunc("POST /songs", h.CreateSong)
	h.router.HandleFunc("GET /songs/analyzed", h.ListAnalyzedSongs)
	h.router.HandleFunc("GET /songs/{id}", h.GetSong)
	h.router.HandleFunc("GET /songs/{id}/analysis", h.GetAnalysis)
	h.router.HandleFunc("PUT /songs/{id}/analysis", h.PutAnalysis)
	h.router.HandleFunc("DELETE /songs/{id}/analysis", h.DeleteAnalysis)
	h.router.HandleFunc("POST /songs/{id}/prefetch", h.PrefetchAnalysis)

	h.router.HandleFunc("POST /compatibility", h.ScoreAnalyses)
	h.router.HandleFunc("POST /compatibility/songs", h.CompareSongs)

	h.router.HandleFunc("GET /weights/{name}", h.GetWeights)
	h.router.HandleFunc("PUT /weights/{name}", h.PutWeights)
}
