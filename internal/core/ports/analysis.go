package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

// ErrUpstream indicates the analysis service failed or returned garbage.
var ErrUpstream = errors.New("analysis service unavailable")

// UpstreamError carries the status returned by the analysis service.
type UpstreamError struct {
	SongID string
	Status int
}

func (e UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("analysis service failed for song %q", e.SongID)
	}
	return fmt.Sprintf("analysis service returned status %d for song %q", e.Status, e.SongID)
}

func (e UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// AnalysisProvider produces a TrackAnalysis for a song's audio.
type AnalysisProvider interface {
	Analyze(ctx context.Context, song domain.Song) (domain.TrackAnalysis, error)
}
