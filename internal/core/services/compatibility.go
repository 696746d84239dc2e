// Package services holds the application logic that sits between the
// transport adapters and the pure scoring core.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
	"github.com/ewilliams-labs/mashability/internal/core/ports"
)

// DefaultProfile is the weight profile name that falls back to the service defaults.
const DefaultProfile = "default"

// defaultFetchTimeout bounds a shared upstream fetch once it is detached
// from the caller that started it.
const defaultFetchTimeout = 2 * time.Minute

// CompareOptions selects the weights for one comparison. An explicit Weights
// value wins over Profile; with neither, the service defaults are used.
type CompareOptions struct {
	Weights   *domain.Weights
	Profile   string
	Normalize bool
}

// Compatibility coordinates the analysis cache, the upstream analysis
// service and the scorer.
type Compatibility struct {
	provider ports.AnalysisProvider
	repo     ports.SongRepository
	profiles ports.WeightsRepository
	defaults domain.Weights
	log      *zap.SugaredLogger

	inflight     singleflight.Group
	fetchTimeout time.Duration
	newID        func() string
}

// NewCompatibility constructs a Compatibility service. profiles may be nil,
// in which case only the default profile is available.
func NewCompatibility(
	provider ports.AnalysisProvider,
	repo ports.SongRepository,
	profiles ports.WeightsRepository,
	defaults domain.Weights,
	log *zap.SugaredLogger,
) *Compatibility {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Compatibility{
		provider: provider,
		repo:     repo,
		profiles: profiles,
		defaults: defaults,
		log:      log,
		newID:    uuid.NewString,

		fetchTimeout: defaultFetchTimeout,
	}
}

// RegisterSong records a song so it can be analysed and compared later.
func (s *Compatibility) RegisterSong(ctx context.Context, title, artist, audioURL string) (domain.Song, error) {
	song, err := domain.NewSong(s.newID(), title, artist, audioURL)
	if err != nil {
		return domain.Song{}, fmt.Errorf("service: %w", err)
	}
	if err := s.repo.SaveSong(ctx, song); err != nil {
		return domain.Song{}, fmt.Errorf("service: failed to save song: %w", err)
	}
	return song, nil
}

func (s *Compatibility) GetSong(ctx context.Context, id string) (domain.Song, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Song{}, fmt.Errorf("service: song id cannot be empty: %w", domain.ErrInvalidSong)
	}
	song, err := s.repo.GetSong(ctx, id)
	if err != nil {
		return domain.Song{}, fmt.Errorf("service: failed to load song: %w", err)
	}
	return song, nil
}

// Analysis returns the cached analysis of a song, asking the analysis
// service on a miss. Concurrent misses for the same song share one upstream
// call.
func (s *Compatibility) Analysis(ctx context.Context, songID string) (domain.TrackAnalysis, error) {
	if strings.TrimSpace(songID) == "" {
		return domain.TrackAnalysis{}, fmt.Errorf("service: song id cannot be empty: %w", domain.ErrInvalidSong)
	}

	a, err := s.repo.GetAnalysis(ctx, songID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.TrackAnalysis{}, fmt.Errorf("service: failed to load analysis: %w", err)
	}

	// The fetch is shared, so it must not die with whichever caller
	// started it. Each caller still gives up on its own context.
	ch := s.inflight.DoChan(songID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.fetchAnalysis(fetchCtx, songID)
	})

	select {
	case <-ctx.Done():
		return domain.TrackAnalysis{}, fmt.Errorf("service: waiting for analysis: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.TrackAnalysis{}, res.Err
		}
		if res.Shared {
			s.log.Debugw("shared in-flight analysis", "song_id", songID)
		}
		return res.Val.(domain.TrackAnalysis), nil
	}
}

func (s *Compatibility) fetchAnalysis(ctx context.Context, songID string) (domain.TrackAnalysis, error) {
	song, err := s.repo.GetSong(ctx, songID)
	if err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("service: failed to load song: %w", err)
	}

	s.log.Infow("analysis cache miss", "song_id", songID)
	a, err := s.provider.Analyze(ctx, song)
	if err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("service: failed to analyze song: %w", err)
	}

	// A failed cache write costs a future upstream call, not this request.
	if err := s.repo.SaveAnalysis(ctx, songID, a); err != nil {
		s.log.Warnw("failed to cache analysis", "song_id", songID, "error", err)
	}
	return a, nil
}

// WarmAnalysis makes sure a song's analysis is cached.
func (s *Compatibility) WarmAnalysis(ctx context.Context, songID string) error {
	_, err := s.Analysis(ctx, songID)
	return err
}

// PutAnalysis stores an analysis supplied by the caller for an existing song.
func (s *Compatibility) PutAnalysis(ctx context.Context, songID string, a domain.TrackAnalysis) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if _, err := s.GetSong(ctx, songID); err != nil {
		return err
	}
	if err := s.repo.SaveAnalysis(ctx, songID, a); err != nil {
		return fmt.Errorf("service: failed to save analysis: %w", err)
	}
	return nil
}

// AnalyzedSongIDs lists the songs whose analysis is cached, in id order.
func (s *Compatibility) AnalyzedSongIDs(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ListAnalyzedSongIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list analyses: %w", err)
	}
	return ids, nil
}

// InvalidateAnalysis drops a cached analysis so the next read refetches it.
func (s *Compatibility) InvalidateAnalysis(ctx context.Context, songID string) error {
	if strings.TrimSpace(songID) == "" {
		return fmt.Errorf("service: song id cannot be empty: %w", domain.ErrInvalidSong)
	}
	if err := s.repo.DeleteAnalysis(ctx, songID); err != nil {
		return fmt.Errorf("service: failed to delete analysis: %w", err)
	}
	return nil
}

// Compare scores the first two songs. Fewer than two ids yields the
// scorer's zero result; ids past the second are not fetched.
func (s *Compatibility) Compare(ctx context.Context, songIDs []string, opts CompareOptions) (domain.Result, error) {
	scorer, err := s.scorer(ctx, opts)
	if err != nil {
		return domain.Result{}, err
	}
	if len(songIDs) < 2 {
		return scorer.Score(nil), nil
	}
	if len(songIDs) > 2 {
		s.log.Debugw("scoring only the first two songs", "ignored", len(songIDs)-2)
	}

	analyses := make([]domain.TrackAnalysis, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range songIDs[:2] {
		g.Go(func() error {
			a, err := s.Analysis(gctx, id)
			if err != nil {
				return err
			}
			analyses[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Result{}, err
	}

	return scorer.Score(analyses), nil
}

// Score rates analyses supplied inline. It performs no I/O beyond resolving
// a named weight profile.
func (s *Compatibility) Score(ctx context.Context, analyses []domain.TrackAnalysis, opts CompareOptions) (domain.Result, error) {
	scorer, err := s.scorer(ctx, opts)
	if err != nil {
		return domain.Result{}, err
	}
	return scorer.Score(analyses), nil
}

// SaveWeightProfile stores a named set of weights.
func (s *Compatibility) SaveWeightProfile(ctx context.Context, name string, w domain.Weights) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("service: profile name cannot be empty: %w", domain.ErrInvalidWeights)
	}
	if s.profiles == nil {
		return errors.New("service: weight profiles are not configured")
	}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.profiles.SaveWeights(ctx, name, w); err != nil {
		return fmt.Errorf("service: failed to save weights: %w", err)
	}
	return nil
}

// WeightProfile loads a named set of weights. The default profile falls
// back to the service defaults until it is overwritten.
func (s *Compatibility) WeightProfile(ctx context.Context, name string) (domain.Weights, error) {
	if s.profiles == nil {
		if name == DefaultProfile {
			return s.defaults, nil
		}
		return domain.Weights{}, fmt.Errorf("service: weight profile %q: %w", name, domain.ErrNotFound)
	}
	w, err := s.profiles.GetWeights(ctx, name)
	if errors.Is(err, domain.ErrNotFound) && name == DefaultProfile {
		return s.defaults, nil
	}
	if err != nil {
		return domain.Weights{}, fmt.Errorf("service: weight profile %q: %w", name, err)
	}
	return w, nil
}

func (s *Compatibility) scorer(ctx context.Context, opts CompareOptions) (domain.Scorer, error) {
	w := s.defaults
	switch {
	case opts.Weights != nil:
		if err := opts.Weights.Validate(); err != nil {
			return domain.Scorer{}, fmt.Errorf("service: %w", err)
		}
		w = *opts.Weights
	case opts.Profile != "":
		var err error
		if w, err = s.WeightProfile(ctx, opts.Profile); err != nil {
			return domain.Scorer{}, err
		}
	}

	if opts.Normalize {
		var err error
		if w, err = w.Normalize(); err != nil {
			return domain.Scorer{}, fmt.Errorf("service: %w", err)
		}
	}
	return domain.Scorer{Weights: w}, nil
}
