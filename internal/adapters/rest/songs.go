package rest

import (
	"net/http"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

type createSongRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	AudioURL string `json:"audio_url"`
}

type prefetchResponse struct {
	JobID  string `json:"job_id"`
	SongID string `json:"song_id"`
}

// CreateSong handles POST /songs
func (h *Handler) CreateSong(w http.ResponseWriter, r *http.Request) {
	var req createSongRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.AudioURL == "" {
		writeError(w, http.StatusBadRequest, "title and audio_url are required")
		return
	}

	song, err := h.svc.RegisterSong(r.Context(), req.Title, req.Artist, req.AudioURL)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/songs/"+song.ID)
	writeJSON(w, http.StatusCreated, song)
}

type analyzedSongsResponse struct {
	SongIDs []string `json:"song_ids"`
}

// ListAnalyzedSongs handles GET /songs/analyzed
func (h *Handler) ListAnalyzedSongs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.AnalyzedSongIDs(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzedSongsResponse{SongIDs: ids})
}

// GetSong handles GET /songs/{id}
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.svc.GetSong(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// GetAnalysis handles GET /songs/{id}/analysis. A cache miss calls the
// analysis service synchronously.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Analysis(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// PutAnalysis handles PUT /songs/{id}/analysis
func (h *Handler) PutAnalysis(w http.ResponseWriter, r *http.Request) {
	var a domain.TrackAnalysis
	if !decodeJSON(w, r, &a) {
		return
	}
	if err := h.svc.PutAnalysis(r.Context(), r.PathValue("id"), a); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAnalysis handles DELETE /songs/{id}/analysis
func (h *Handler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.InvalidateAnalysis(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PrefetchAnalysis handles POST /songs/{id}/prefetch
func (h *Handler) PrefetchAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeError(w, http.StatusNotImplemented, "background prefetch not configured")
		return
	}

	song, err := h.svc.GetSong(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	jobID, ok := h.jobs.Submit(song.ID)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "prefetch queue is full")
		return
	}
	writeJSON(w, http.StatusAccepted, prefetchResponse{JobID: jobID, SongID: song.ID})
}
