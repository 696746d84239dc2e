// Package postgres provides a PostgreSQL-backed implementation of the
// repository ports, for deployments that share one database across
// API instances.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
	"github.com/ewilliams-labs/mashability/internal/core/ports"
)

type Adapter struct {
	db *sql.DB
}

var (
	_ ports.SongRepository    = (*Adapter)(nil)
	_ ports.WeightsRepository = (*Adapter)(nil)
	_ ports.Pinger            = (*Adapter)(nil)
)

// NewAdapter opens the database at databaseURL and creates the schema.
func NewAdapter(ctx context.Context, databaseURL string, log *zap.SugaredLogger) (*Adapter, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Errorw("failed to open database connection", "error", err)
		return nil, fmt.Errorf("postgres: failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		log.Errorw("failed to ping database", "error", err)
		_ = db.Close()
		return nil, fmt.Errorf("postgres: failed to ping db: %w", err)
	}

	a := &Adapter{db: db}
	if err := a.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migration failed: %w", err)
	}
	return a, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

func (a *Adapter) SaveSong(ctx context.Context, s domain.Song) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO songs (id, title, artist, audio_url) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			artist = EXCLUDED.artist,
			audio_url = EXCLUDED.audio_url`,
		s.ID, s.Title, s.Artist, s.AudioURL)
	if err != nil {
		return fmt.Errorf("postgres: failed to save song %s: %w", s.ID, err)
	}
	return nil
}

func (a *Adapter) GetSong(ctx context.Context, id string) (domain.Song, error) {
	var s domain.Song
	var artist sql.NullString
	err := a.db.QueryRowContext(ctx,
		`SELECT id, title, artist, audio_url FROM songs WHERE id = $1`, id,
	).Scan(&s.ID, &s.Title, &artist, &s.AudioURL)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Song{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Song{}, fmt.Errorf("postgres: failed to load song: %w", err)
	}
	s.Artist = artist.String
	return s, nil
}

func (a *Adapter) SaveAnalysis(ctx context.Context, songID string, t domain.TrackAnalysis) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO analyses (
			song_id, tempo_bpm, tonic, mode, camelot, tuning_offset_cents,
			pulse_clarity, complexity, band_low, band_mid, band_high,
			brightness, roughness, energy
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (song_id) DO UPDATE SET
			tempo_bpm = EXCLUDED.tempo_bpm,
			tonic = EXCLUDED.tonic,
			mode = EXCLUDED.mode,
			camelot = EXCLUDED.camelot,
			tuning_offset_cents = EXCLUDED.tuning_offset_cents,
			pulse_clarity = EXCLUDED.pulse_clarity,
			complexity = EXCLUDED.complexity,
			band_low = EXCLUDED.band_low,
			band_mid = EXCLUDED.band_mid,
			band_high = EXCLUDED.band_high,
			brightness = EXCLUDED.brightness,
			roughness = EXCLUDED.roughness,
			energy = EXCLUDED.energy,
			analyzed_at = now()`,
		songID, t.TempoBPM, t.Key.Tonic, string(t.Key.Mode), t.Key.Camelot, t.Key.TuningOffsetCents,
		t.Rhythm.PulseClarity, t.Rhythm.Complexity,
		t.SpectralBalance.Low, t.SpectralBalance.Mid, t.SpectralBalance.High,
		t.Brightness, t.Roughness, t.Energy,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save analysis for %s: %w", songID, err)
	}
	return nil
}

func (a *Adapter) GetAnalysis(ctx context.Context, songID string) (domain.TrackAnalysis, error) {
	var t domain.TrackAnalysis
	var mode string
	err := a.db.QueryRowContext(ctx, `
		SELECT tempo_bpm, tonic, mode, camelot, tuning_offset_cents,
			pulse_clarity, complexity, band_low, band_mid, band_high,
			brightness, roughness, energy
		FROM analyses WHERE song_id = $1`, songID,
	).Scan(
		&t.TempoBPM, &t.Key.Tonic, &mode, &t.Key.Camelot, &t.Key.TuningOffsetCents,
		&t.Rhythm.PulseClarity, &t.Rhythm.Complexity,
		&t.SpectralBalance.Low, &t.SpectralBalance.Mid, &t.SpectralBalance.High,
		&t.Brightness, &t.Roughness, &t.Energy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TrackAnalysis{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("postgres: failed to load analysis: %w", err)
	}
	t.Key.Mode = domain.Mode(mode)
	return t, nil
}

func (a *Adapter) DeleteAnalysis(ctx context.Context, songID string) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM analyses WHERE song_id = $1`, songID); err != nil {
		return fmt.Errorf("postgres: failed to delete analysis: %w", err)
	}
	return nil
}

func (a *Adapter) ListAnalyzedSongIDs(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT song_id FROM analyses ORDER BY song_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list analyses: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan song id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (a *Adapter) SaveWeights(ctx context.Context, name string, w domain.Weights) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO weight_profiles (name, harmonic, rhythmic, spectral, energy)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			harmonic = EXCLUDED.harmonic,
			rhythmic = EXCLUDED.rhythmic,
			spectral = EXCLUDED.spectral,
			energy = EXCLUDED.energy,
			updated_at = now()`,
		name, w.Harmonic, w.Rhythmic, w.Spectral, w.Energy)
	if err != nil {
		return fmt.Errorf("postgres: failed to save weights %q: %w", name, err)
	}
	return nil
}

func (a *Adapter) GetWeights(ctx context.Context, name string) (domain.Weights, error) {
	var w domain.Weights
	err := a.db.QueryRowContext(ctx,
		`SELECT harmonic, rhythmic, spectral, energy FROM weight_profiles WHERE name = $1`, name,
	).Scan(&w.Harmonic, &w.Rhythmic, &w.Spectral, &w.Energy)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Weights{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Weights{}, fmt.Errorf("postgres: failed to load weights: %w", err)
	}
	return w, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT,
		audio_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS analyses (
		song_id TEXT PRIMARY KEY REFERENCES songs(id) ON DELETE CASCADE,
		tempo_bpm DOUBLE PRECISION NOT NULL,
		tonic TEXT NOT NULL,
		mode TEXT NOT NULL,
		camelot TEXT NOT NULL DEFAULT '',
		tuning_offset_cents DOUBLE PRECISION NOT NULL DEFAULT 0,
		pulse_clarity DOUBLE PRECISION NOT NULL,
		complexity DOUBLE PRECISION NOT NULL,
		band_low DOUBLE PRECISION NOT NULL,
		band_mid DOUBLE PRECISION NOT NULL,
		band_high DOUBLE PRECISION NOT NULL,
		brightness DOUBLE PRECISION NOT NULL,
		roughness DOUBLE PRECISION NOT NULL,
		energy DOUBLE PRECISION NOT NULL,
		analyzed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS weight_profiles (
		name TEXT PRIMARY KEY,
		harmonic DOUBLE PRECISION NOT NULL,
		rhythmic DOUBLE PRECISION NOT NULL,
		spectral DOUBLE PRECISION NOT NULL,
		energy DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func (a *Adapter) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
