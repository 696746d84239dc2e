package services

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
	"github.com/ewilliams-labs/mashability/internal/core/ports"
	"github.com/ewilliams-labs/mashability/internal/logger"
)

func testAnalysis(bpm float64) domain.TrackAnalysis {
	return domain.TrackAnalysis{
		TempoBPM:        bpm,
		Key:             domain.Key{Tonic: "A", Mode: domain.Minor, Camelot: "8A"},
		Rhythm:          domain.Rhythm{PulseClarity: 1, Complexity: 1},
		SpectralBalance: domain.SpectralBalance{Low: 0.4, Mid: 0.4, High: 0.2},
		Brightness:      0.3,
		Energy:          0.7,
	}
}

func TestCompatibility_Analysis(t *testing.T) {
	tests := []struct {
		name          string
		cached        map[string]domain.TrackAnalysis
		songs         map[string]domain.Song
		providerErr   error
		getErr        error
		saveErr       error
		wantErr       error
		wantProvider  int
		wantCached    bool
		wantWarnedLog bool
	}{
		{
			name:         "cache hit skips the analysis service",
			cached:       map[string]domain.TrackAnalysis{"s1": testAnalysis(100)},
			wantProvider: 0,
			wantCached:   true,
		},
		{
			name:         "cache miss fetches and stores",
			songs:        map[string]domain.Song{"s1": {ID: "s1", Title: "One", AudioURL: "https://cdn.test/1.mp3"}},
			wantProvider: 1,
			wantCached:   true,
		},
		{
			name:    "unknown song",
			wantErr: domain.ErrNotFound,
		},
		{
			name:         "upstream failure is surfaced",
			songs:        map[string]domain.Song{"s1": {ID: "s1", Title: "One", AudioURL: "https://cdn.test/1.mp3"}},
			providerErr:  ports.UpstreamError{SongID: "s1", Status: 503},
			wantErr:      ports.ErrUpstream,
			wantProvider: 1,
		},
		{
			name:    "repository read failure",
			getErr:  errors.New("disk on fire"),
			wantErr: nil,
		},
		{
			name:          "cache write failure still returns the analysis",
			songs:         map[string]domain.Song{"s1": {ID: "s1", Title: "One", AudioURL: "https://cdn.test/1.mp3"}},
			saveErr:       errors.New("read-only"),
			wantProvider:  1,
			wantWarnedLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			for id, a := range tt.cached {
				repo.analyses[id] = a
			}
			for id, s := range tt.songs {
				repo.songs[id] = s
			}
			repo.getErr = tt.getErr
			repo.saveErr = tt.saveErr
			provider := &mockProvider{analysis: testAnalysis(120), err: tt.providerErr}
			log, logs := logger.NewTestLogger()

			svc := NewCompatibility(provider, repo, nil, domain.DefaultWeights(), log)
			got, err := svc.Analysis(context.Background(), "s1")

			if tt.getErr != nil {
				if err == nil {
					t.Fatal("expected repository error")
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calls := provider.calls.Load(); int(calls) != tt.wantProvider {
				t.Fatalf("provider calls: got %d, want %d", calls, tt.wantProvider)
			}
			if tt.wantErr == nil && got.TempoBPM == 0 {
				t.Fatalf("analysis not returned: %+v", got)
			}
			if _, ok := repo.analyses["s1"]; ok != tt.wantCached {
				t.Fatalf("cached: got %v, want %v", ok, tt.wantCached)
			}
			if warned := logs.FilterMessage("failed to cache analysis").Len() > 0; warned != tt.wantWarnedLog {
				t.Fatalf("warning logged: got %v, want %v", warned, tt.wantWarnedLog)
			}
		})
	}
}

func TestCompatibility_Analysis_SharesInFlightFetches(t *testing.T) {
	repo := newMockRepo()
	repo.songs["s1"] = domain.Song{ID: "s1", Title: "One", AudioURL: "https://cdn.test/1.mp3"}
	release := make(chan struct{})
	provider := &mockProvider{analysis: testAnalysis(120), block: release}

	svc := NewCompatibility(provider, repo, nil, domain.DefaultWeights(), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Analysis(context.Background(), "s1")
			errs <- err
		}()
	}

	deadline := time.Now().Add(time.Second)
	for provider.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls := provider.calls.Load(); calls != 1 {
		t.Fatalf("provider calls: got %d, want 1", calls)
	}
}

func TestCompatibility_Analysis_CanceledCallerDoesNotFailOthers(t *testing.T) {
	repo := newMockRepo()
	repo.songs["s1"] = domain.Song{ID: "s1", Title: "One", AudioURL: "https://cdn.test/1.mp3"}
	release := make(chan struct{})
	provider := &mockProvider{analysis: testAnalysis(120), block: release}

	svc := NewCompatibility(provider, repo, nil, domain.DefaultWeights(), nil)

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := svc.Analysis(ctx1, "s1")
		first <- err
	}()

	deadline := time.Now().Add(time.Second)
	for provider.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	second := make(chan error, 1)
	go func() {
		_, err := svc.Analysis(context.Background(), "s1")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel1()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: expected context.Canceled, got %v", err)
	}

	close(release)
	if err := <-second; err != nil {
		t.Fatalf("second caller failed after the first canceled: %v", err)
	}
	if calls := provider.calls.Load(); calls != 1 {
		t.Fatalf("provider calls: got %d, want 1", calls)
	}
	if _, ok := repo.analyses["s1"]; !ok {
		t.Fatal("analysis was not cached")
	}
}

func TestCompatibility_AnalyzedSongIDs(t *testing.T) {
	repo := newMockRepo()
	repo.analyses["s2"] = testAnalysis(100)
	repo.analyses["s1"] = testAnalysis(120)
	svc := NewCompatibility(&mockProvider{}, repo, nil, domain.DefaultWeights(), nil)

	ids, err := svc.AnalyzedSongIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"s1", "s2"}) {
		t.Fatalf("ids: got %v", ids)
	}

	repo.listErr = errors.New("disk on fire")
	if _, err := svc.AnalyzedSongIDs(context.Background()); !errors.Is(err, repo.listErr) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestCompatibility_Compare(t *testing.T) {
	custom := domain.Weights{Harmonic: 1}
	negative := domain.Weights{Harmonic: -1}

	tests := []struct {
		name          string
		ids           []string
		opts          CompareOptions
		profiles      map[string]domain.Weights
		wantScore     int
		wantCode      domain.Code
		wantErr       error
		wantRepoReads int
	}{
		{
			name:      "single song returns the insufficient input result without I/O",
			ids:       []string{"s1"},
			wantScore: 0,
			wantCode:  domain.CodeInsufficientInput,
		},
		{
			name:          "two identical songs",
			ids:           []string{"s1", "s2"},
			wantScore:     100,
			wantCode:      domain.CodeKeyMatch,
			wantRepoReads: 2,
		},
		{
			name:          "third song is never fetched",
			ids:           []string{"s1", "s2", "s3"},
			wantScore:     100,
			wantCode:      domain.CodeKeyMatch,
			wantRepoReads: 2,
		},
		{
			name:          "explicit weights are used as given",
			ids:           []string{"s1", "s2"},
			opts:          CompareOptions{Weights: &domain.Weights{Harmonic: 2, Rhythmic: 2}},
			wantScore:     400,
			wantCode:      domain.CodeKeyMatch,
			wantRepoReads: 2,
		},
		{
			name:          "normalized explicit weights",
			ids:           []string{"s1", "s2"},
			opts:          CompareOptions{Weights: &domain.Weights{Harmonic: 2, Rhythmic: 2}, Normalize: true},
			wantScore:     100,
			wantCode:      domain.CodeKeyMatch,
			wantRepoReads: 2,
		},
		{
			name:          "named profile",
			ids:           []string{"s1", "s2"},
			opts:          CompareOptions{Profile: "harmony-only"},
			profiles:      map[string]domain.Weights{"harmony-only": custom},
			wantScore:     100,
			wantCode:      domain.CodeKeyMatch,
			wantRepoReads: 2,
		},
		{
			name:    "unknown profile",
			ids:     []string{"s1", "s2"},
			opts:    CompareOptions{Profile: "nope"},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "invalid weights",
			ids:     []string{"s1", "s2"},
			opts:    CompareOptions{Weights: &negative},
			wantErr: domain.ErrInvalidWeights,
		},
		{
			name:    "zero weights cannot be normalized",
			ids:     []string{"s1", "s2"},
			opts:    CompareOptions{Weights: &domain.Weights{}, Normalize: true},
			wantErr: domain.ErrInvalidWeights,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			repo.analyses["s1"] = testAnalysis(120)
			repo.analyses["s2"] = testAnalysis(120)
			repo.analyses["s3"] = testAnalysis(60)
			profiles := &mockProfiles{weights: tt.profiles}

			svc := NewCompatibility(&mockProvider{}, repo, profiles, domain.DefaultWeights(), nil)
			got, err := svc.Compare(context.Background(), tt.ids, tt.opts)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Score != tt.wantScore {
				t.Fatalf("score: got %d, want %d", got.Score, tt.wantScore)
			}
			if len(got.Reasons) == 0 || got.Reasons[0].Code != tt.wantCode {
				t.Fatalf("first reason: got %+v, want %s", got.Reasons, tt.wantCode)
			}
			if reads := int(repo.analysisReads.Load()); reads != tt.wantRepoReads {
				t.Fatalf("analysis reads: got %d, want %d", reads, tt.wantRepoReads)
			}
		})
	}
}

func TestCompatibility_PutAnalysis(t *testing.T) {
	invalid := testAnalysis(0)

	tests := []struct {
		name     string
		songID   string
		analysis domain.TrackAnalysis
		wantErr  error
	}{
		{name: "stores a valid analysis", songID: "s1", analysis: testAnalysis(128)},
		{name: "rejects an invalid analysis", songID: "s1", analysis: invalid, wantErr: domain.ErrInvalidAnalysis},
		{name: "rejects an unknown song", songID: "missing", analysis: testAnalysis(128), wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			repo.songs["s1"] = domain.Song{ID: "s1", Title: "One", AudioURL: "https://cdn.test/1.mp3"}
			svc := NewCompatibility(&mockProvider{}, repo, nil, domain.DefaultWeights(), nil)

			err := svc.PutAnalysis(context.Background(), tt.songID, tt.analysis)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.analyses[tt.songID].TempoBPM != 128 {
				t.Fatalf("analysis not stored: %+v", repo.analyses)
			}
		})
	}
}

func TestCompatibility_RegisterSong(t *testing.T) {
	repo := newMockRepo()
	svc := NewCompatibility(&mockProvider{}, repo, nil, domain.DefaultWeights(), nil)
	svc.newID = func() string { return "fixed-id" }

	song, err := svc.RegisterSong(context.Background(), "One", "Artist", "https://cdn.test/1.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if song.ID != "fixed-id" || repo.songs["fixed-id"].Title != "One" {
		t.Fatalf("song not saved: %+v", repo.songs)
	}

	if _, err := svc.RegisterSong(context.Background(), "", "Artist", "https://cdn.test/1.mp3"); !errors.Is(err, domain.ErrInvalidSong) {
		t.Fatalf("expected ErrInvalidSong, got %v", err)
	}
}

func TestCompatibility_WeightProfile(t *testing.T) {
	profiles := &mockProfiles{}
	svc := NewCompatibility(&mockProvider{}, newMockRepo(), profiles, domain.DefaultWeights(), nil)
	ctx := context.Background()

	got, err := svc.WeightProfile(ctx, DefaultProfile)
	if err != nil || got != domain.DefaultWeights() {
		t.Fatalf("default profile: got %+v, %v", got, err)
	}

	custom := domain.Weights{Harmonic: 0.5, Rhythmic: 0.5}
	if err := svc.SaveWeightProfile(ctx, DefaultProfile, custom); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := svc.WeightProfile(ctx, DefaultProfile); got != custom {
		t.Fatalf("overwritten default: got %+v, want %+v", got, custom)
	}

	if err := svc.SaveWeightProfile(ctx, " ", custom); !errors.Is(err, domain.ErrInvalidWeights) {
		t.Fatalf("empty name: expected ErrInvalidWeights, got %v", err)
	}
}

// --- Mocks ---

type mockProvider struct {
	analysis domain.TrackAnalysis
	err      error
	block    chan struct{}

	calls atomic.Int32
}

func (m *mockProvider) Analyze(ctx context.Context, song domain.Song) (domain.TrackAnalysis, error) {
	m.calls.Add(1)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return domain.TrackAnalysis{}, ctx.Err()
		}
	}
	if m.err != nil {
		return domain.TrackAnalysis{}, m.err
	}
	return m.analysis, nil
}

type mockRepo struct {
	mu       sync.Mutex
	songs    map[string]domain.Song
	analyses map[string]domain.TrackAnalysis
	getErr   error
	saveErr  error
	listErr  error

	analysisReads atomic.Int32
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		songs:    map[string]domain.Song{},
		analyses: map[string]domain.TrackAnalysis{},
	}
}

func (m *mockRepo) SaveSong(ctx context.Context, s domain.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.songs[s.ID] = s
	return nil
}

func (m *mockRepo) GetSong(ctx context.Context, id string) (domain.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return domain.Song{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockRepo) SaveAnalysis(ctx context.Context, songID string, a domain.TrackAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.analyses[songID] = a
	return nil
}

func (m *mockRepo) GetAnalysis(ctx context.Context, songID string) (domain.TrackAnalysis, error) {
	m.analysisReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.TrackAnalysis{}, m.getErr
	}
	a, ok := m.analyses[songID]
	if !ok {
		return domain.TrackAnalysis{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) DeleteAnalysis(ctx context.Context, songID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.analyses, songID)
	return nil
}

func (m *mockRepo) ListAnalyzedSongIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.analyses))
	for id := range m.analyses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type mockProfiles struct {
	weights map[string]domain.Weights
}

func (m *mockProfiles) SaveWeights(ctx context.Context, name string, w domain.Weights) error {
	if m.weights == nil {
		m.weights = map[string]domain.Weights{}
	}
	m.weights[name] = w
	return nil
}

func (m *mockProfiles) GetWeights(ctx context.Context, name string) (domain.Weights, error) {
	w, ok := m.weights[name]
	if !ok {
		return domain.Weights{}, domain.ErrNotFound
	}
	return w, nil
}
