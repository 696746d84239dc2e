// Package sqlite provides a SQLite-backed implementation of the repository ports.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
	"github.com/ewilliams-labs/mashability/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements the repository ports for SQLite
type Adapter struct {
	db *sql.DB
}

var (
	_ ports.SongRepository    = (*Adapter)(nil)
	_ ports.WeightsRepository = (*Adapter)(nil)
	_ ports.Pinger            = (*Adapter)(nil)
)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open db: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and ":memory:"
	// databases exist per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

func (a *Adapter) SaveSong(ctx context.Context, s domain.Song) error {
	query := `
		INSERT INTO songs (id, title, artist, audio_url) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			artist=excluded.artist,
			audio_url=excluded.audio_url;
	`
	if _, err := a.db.ExecContext(ctx, query, s.ID, s.Title, s.Artist, s.AudioURL); err != nil {
		return fmt.Errorf("sqlite: failed to save song %s: %w", s.ID, err)
	}
	return nil
}

func (a *Adapter) GetSong(ctx context.Context, id string) (domain.Song, error) {
	row := a.db.QueryRowContext(ctx, "SELECT id, title, artist, audio_url FROM songs WHERE id = ?", id)
	var s domain.Song
	var artist sql.NullString
	if err := row.Scan(&s.ID, &s.Title, &artist, &s.AudioURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Song{}, domain.ErrNotFound
		}
		return domain.Song{}, fmt.Errorf("sqlite: failed to load song: %w", err)
	}
	s.Artist = artist.String
	return s, nil
}

// SaveAnalysis replaces the cached analysis of a song.
func (a *Adapter) SaveAnalysis(ctx context.Context, songID string, t domain.TrackAnalysis) error {
	query := `
		INSERT INTO analyses (
			song_id, tempo_bpm, tonic, mode, camelot, tuning_offset_cents,
			pulse_clarity, complexity, band_low, band_mid, band_high,
			brightness, roughness, energy
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(song_id) DO UPDATE SET
			tempo_bpm=excluded.tempo_bpm,
			tonic=excluded.tonic,
			mode=excluded.mode,
			camelot=excluded.camelot,
			tuning_offset_cents=excluded.tuning_offset_cents,
			pulse_clarity=excluded.pulse_clarity,
			complexity=excluded.complexity,
			band_low=excluded.band_low,
			band_mid=excluded.band_mid,
			band_high=excluded.band_high,
			brightness=excluded.brightness,
			roughness=excluded.roughness,
			energy=excluded.energy,
			analyzed_at=CURRENT_TIMESTAMP;
	`
	if _, err := a.db.ExecContext(
		ctx,
		query,
		songID,
		t.TempoBPM,
		t.Key.Tonic,
		string(t.Key.Mode),
		t.Key.Camelot,
		t.Key.TuningOffsetCents,
		t.Rhythm.PulseClarity,
		t.Rhythm.Complexity,
		t.SpectralBalance.Low,
		t.SpectralBalance.Mid,
		t.SpectralBalance.High,
		t.Brightness,
		t.Roughness,
		t.Energy,
	); err != nil {
		return fmt.Errorf("sqlite: failed to save analysis for %s: %w", songID, err)
	}
	return nil
}

func (a *Adapter) GetAnalysis(ctx context.Context, songID string) (domain.TrackAnalysis, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT tempo_bpm, tonic, mode, camelot, tuning_offset_cents,
			pulse_clarity, complexity, band_low, band_mid, band_high,
			brightness, roughness, energy
		FROM analyses
		WHERE song_id = ?
	`, songID)

	var t domain.TrackAnalysis
	var mode string
	if err := row.Scan(
		&t.TempoBPM,
		&t.Key.Tonic,
		&mode,
		&t.Key.Camelot,
		&t.Key.TuningOffsetCents,
		&t.Rhythm.PulseClarity,
		&t.Rhythm.Complexity,
		&t.SpectralBalance.Low,
		&t.SpectralBalance.Mid,
		&t.SpectralBalance.High,
		&t.Brightness,
		&t.Roughness,
		&t.Energy,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TrackAnalysis{}, domain.ErrNotFound
		}
		return domain.TrackAnalysis{}, fmt.Errorf("sqlite: failed to load analysis: %w", err)
	}
	t.Key.Mode = domain.Mode(mode)
	return t, nil
}

// DeleteAnalysis is idempotent: deleting a missing analysis is not an error.
func (a *Adapter) DeleteAnalysis(ctx context.Context, songID string) error {
	if _, err := a.db.ExecContext(ctx, "DELETE FROM analyses WHERE song_id = ?", songID); err != nil {
		return fmt.Errorf("sqlite: failed to delete analysis: %w", err)
	}
	return nil
}

func (a *Adapter) ListAnalyzedSongIDs(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT song_id FROM analyses ORDER BY song_id ASC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list analyses: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan song id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate analyses: %w", err)
	}
	return ids, nil
}

func (a *Adapter) SaveWeights(ctx context.Context, name string, w domain.Weights) error {
	query := `
		INSERT INTO weight_profiles (name, harmonic, rhythmic, spectral, energy)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			harmonic=excluded.harmonic,
			rhythmic=excluded.rhythmic,
			spectral=excluded.spectral,
			energy=excluded.energy,
			updated_at=CURRENT_TIMESTAMP;
	`
	if _, err := a.db.ExecContext(ctx, query, name, w.Harmonic, w.Rhythmic, w.Spectral, w.Energy); err != nil {
		return fmt.Errorf("sqlite: failed to save weights %q: %w", name, err)
	}
	return nil
}

func (a *Adapter) GetWeights(ctx context.Context, name string) (domain.Weights, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT harmonic, rhythmic, spectral, energy FROM weight_profiles WHERE name = ?", name)
	var w domain.Weights
	if err := row.Scan(&w.Harmonic, &w.Rhythmic, &w.Spectral, &w.Energy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Weights{}, domain.ErrNotFound
		}
		return domain.Weights{}, fmt.Errorf("sqlite: failed to load weights: %w", err)
	}
	return w, nil
}

func (a *Adapter) migrate() error {
	query := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT,
		audio_url TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analyses (
		song_id TEXT PRIMARY KEY,
		tempo_bpm REAL NOT NULL,
		tonic TEXT NOT NULL,
		mode TEXT NOT NULL,
		camelot TEXT NOT NULL DEFAULT '',
		tuning_offset_cents REAL NOT NULL DEFAULT 0,
		pulse_clarity REAL NOT NULL,
		complexity REAL NOT NULL,
		band_low REAL NOT NULL,
		band_mid REAL NOT NULL,
		band_high REAL NOT NULL,
		brightness REAL NOT NULL,
		roughness REAL NOT NULL,
		energy REAL NOT NULL,
		analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(song_id) REFERENCES songs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS weight_profiles (
		name TEXT PRIMARY KEY,
		harmonic REAL NOT NULL,
		rhythmic REAL NOT NULL,
		spectral REAL NOT NULL,
		energy REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := a.db.Exec(query)
	return err
}
