package rest

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
	"github.com/ewilliams-labs/mashability/internal/core/ports"
)

const (
	errCodeUpstream        = "UPSTREAM_UNAVAILABLE"
	errCodeInvalidAnalysis = "INVALID_ANALYSIS"
	errCodeInvalidWeights  = "INVALID_WEIGHTS"
	errCodeNotFound        = "NOT_FOUND"
)

// maxBodyBytes bounds request bodies; analyses are small.
const maxBodyBytes = 1 << 20

// statusClientClosedRequest is nginx's non-standard code for a client that
// went away before the response was ready.
const statusClientClosedRequest = 499

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorWithCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSON enforces the JSON content type and decodes the body into v.
// It writes the error response itself and reports whether decoding worked.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrUpstream):
		h.log.Warnw("analysis service failure", "path", r.URL.Path, "error", err)
		writeErrorWithCode(w, http.StatusBadGateway, err.Error(), errCodeUpstream)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	case errors.Is(err, domain.ErrInvalidAnalysis):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeInvalidAnalysis)
	case errors.Is(err, domain.ErrInvalidWeights):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidWeights)
	case errors.Is(err, domain.ErrInvalidSong):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		h.log.Debugw("client canceled request", "path", r.URL.Path)
		writeError(w, statusClientClosedRequest, "request canceled")
	default:
		h.log.Errorw("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
