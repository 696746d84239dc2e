package rest

import (
	"net/http"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

type weightsResponse struct {
	Name    string         `json:"name"`
	Weights domain.Weights `json:"weights"`
}

// GetWeights handles GET /weights/{name}
func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	weights, err := h.svc.WeightProfile(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weightsResponse{Name: name, Weights: weights})
}

// PutWeights handles PUT /weights/{name}. The body is a map of dimension
// name to weight; omitted dimensions are zero.
func (h *Handler) PutWeights(w http.ResponseWriter, r *http.Request) {
	var req map[string]float64
	if !decodeJSON(w, r, &req) {
		return
	}
	weights, err := domain.WeightsFromMap(req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	name := r.PathValue("name")
	if err := h.svc.SaveWeightProfile(r.Context(), name, weights); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weightsResponse{Name: name, Weights: weights})
}
