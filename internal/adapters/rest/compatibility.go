package rest

import (
	"net/http"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
	"github.com/ewilliams-labs/mashability/internal/core/services"
)

// weightOptions are shared by both compatibility endpoints. Weights are a
// map so that unknown dimension names can be rejected.
type weightOptions struct {
	Weights   map[string]float64 `json:"weights,omitempty"`
	Profile   string             `json:"profile,omitempty"`
	Normalize bool               `json:"normalize,omitempty"`
}

func (o weightOptions) compareOptions() (services.CompareOptions, error) {
	opts := services.CompareOptions{Profile: o.Profile, Normalize: o.Normalize}
	if o.Weights != nil {
		w, err := domain.WeightsFromMap(o.Weights)
		if err != nil {
			return services.CompareOptions{}, err
		}
		opts.Weights = &w
	}
	return opts, nil
}

type scoreRequest struct {
	Analyses []domain.TrackAnalysis `json:"analyses"`
	weightOptions
}

type compareRequest struct {
	SongIDs []string `json:"song_ids"`
	weightOptions
}

type findingResponse struct {
	Code      domain.Code      `json:"code"`
	Dimension domain.Dimension `json:"dimension,omitempty"`
	Params    map[string]any   `json:"params,omitempty"`
	Message   string           `json:"message"`
}

type resultResponse struct {
	Score       int               `json:"score"`
	Breakdown   domain.Breakdown  `json:"breakdown"`
	Reasons     []findingResponse `json:"reasons"`
	Suggestions []findingResponse `json:"suggestions"`
}

func newResultResponse(res domain.Result) resultResponse {
	return resultResponse{
		Score:       res.Score,
		Breakdown:   res.Breakdown,
		Reasons:     newFindingResponses(res.Reasons),
		Suggestions: newFindingResponses(res.Suggestions),
	}
}

func newFindingResponses(fs []domain.Finding) []findingResponse {
	out := make([]findingResponse, 0, len(fs))
	for _, f := range fs {
		out = append(out, findingResponse{
			Code:      f.Code,
			Dimension: f.Dimension,
			Params:    f.Params,
			Message:   f.Message(),
		})
	}
	return out
}

// ScoreAnalyses handles POST /compatibility with analyses supplied inline.
func (h *Handler) ScoreAnalyses(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	opts, err := req.compareOptions()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	for _, a := range req.Analyses {
		if err := a.Validate(); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
	}

	res, err := h.svc.Score(r.Context(), req.Analyses, opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

// CompareSongs handles POST /compatibility/songs for registered songs.
func (h *Handler) CompareSongs(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	opts, err := req.compareOptions()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.Compare(r.Context(), req.SongIDs, opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}
