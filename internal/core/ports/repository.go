package ports

import (
	"context"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

// SongRepository stores songs and caches their analyses by song id so that
// repeated compatibility checks do not call the analysis service again.
type SongRepository interface {
	SaveSong(ctx context.Context, s domain.Song) error
	GetSong(ctx context.Context, id string) (domain.Song, error)
	SaveAnalysis(ctx context.Context, songID string, a domain.TrackAnalysis) error
	GetAnalysis(ctx context.Context, songID string) (domain.TrackAnalysis, error)
	DeleteAnalysis(ctx context.Context, songID string) error
	ListAnalyzedSongIDs(ctx context.Context) ([]string, error)
}

// WeightsRepository stores named weight profiles.
type WeightsRepository interface {
	SaveWeights(ctx context.Context, name string, w domain.Weights) error
	GetWeights(ctx context.Context, name string) (domain.Weights, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
