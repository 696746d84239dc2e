package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotFound        = errors.New("domain: not found")
	ErrInvalidAnalysis = errors.New("domain: invalid analysis")
	ErrInvalidWeights  = errors.New("domain: invalid weights")
	ErrInvalidSong     = errors.New("domain: invalid song")
)

// Mode is the tonality of a key.
type Mode string

const (
	Major Mode = "major"
	Minor Mode = "minor"
)

// Key describes the tonal centre of a track as reported by the analysis service.
type Key struct {
	Tonic             string  `json:"tonic"`
	Mode              Mode    `json:"mode"`
	Camelot           string  `json:"camelot_code"`
	TuningOffsetCents float64 `json:"tuning_offset_cents"`
}

type Rhythm struct {
	PulseClarity float64 `json:"pulse_clarity"`
	Complexity   float64 `json:"complexity"`
}

// SpectralBalance is the share of power in the low, mid and high bands.
// The bands are compared independently and need not sum to 1.
type SpectralBalance struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// TrackAnalysis is the structured result of analysing one song. Values are
// produced upstream and treated as read-only.
type TrackAnalysis struct {
	TempoBPM        float64         `json:"tempo_bpm"`
	Key             Key             `json:"key"`
	Rhythm          Rhythm          `json:"rhythm"`
	SpectralBalance SpectralBalance `json:"spectral_balance"`
	Brightness      float64         `json:"brightness"`
	Roughness       float64         `json:"roughness"`
	Energy          float64         `json:"energy"`
}

// CamelotCode returns the key's Camelot code, deriving it from tonic and mode
// when the analysis did not carry one.
func (k Key) CamelotCode() string {
	if k.Camelot != "" {
		return k.Camelot
	}
	code, _ := CamelotFor(k.Tonic, k.Mode)
	return code
}

// Validate checks that an analysis is fully populated. The scorer never calls
// it; it guards analyses entering the system through the API.
func (a TrackAnalysis) Validate() error {
	if !finite(a.TempoBPM) || a.TempoBPM <= 0 {
		return fmt.Errorf("%w: tempo_bpm must be positive", ErrInvalidAnalysis)
	}
	if _, ok := ParsePitchClass(a.Key.Tonic); !ok {
		return fmt.Errorf("%w: unknown tonic %q", ErrInvalidAnalysis, a.Key.Tonic)
	}
	if a.Key.Mode != Major && a.Key.Mode != Minor {
		return fmt.Errorf("%w: mode must be major or minor", ErrInvalidAnalysis)
	}
	if a.Key.Camelot != "" {
		if _, _, ok := ParseCamelot(a.Key.Camelot); !ok {
			return fmt.Errorf("%w: unknown camelot code %q", ErrInvalidAnalysis, a.Key.Camelot)
		}
	}
	if !finite(a.Key.TuningOffsetCents) {
		return fmt.Errorf("%w: tuning_offset_cents must be finite", ErrInvalidAnalysis)
	}

	fields := []struct {
		name string
		v    float64
		unit bool
	}{
		{"rhythm.pulse_clarity", a.Rhythm.PulseClarity, true},
		{"rhythm.complexity", a.Rhythm.Complexity, false},
		{"spectral_balance.low", a.SpectralBalance.Low, true},
		{"spectral_balance.mid", a.SpectralBalance.Mid, true},
		{"spectral_balance.high", a.SpectralBalance.High, true},
		{"brightness", a.Brightness, false},
		{"roughness", a.Roughness, false},
		{"energy", a.Energy, true},
	}
	for _, f := range fields {
		if !finite(f.v) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidAnalysis, f.name)
		}
		if f.unit && f.v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1]", ErrInvalidAnalysis, f.name)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
