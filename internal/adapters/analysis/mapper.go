package analysis

import (
	"fmt"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

// mapAnalysisToDomain converts the upstream payload. Energy is taken from
// the payload when present; callers fill it in otherwise.
func mapAnalysisToDomain(r analysisResponse) (domain.TrackAnalysis, error) {
	tonic, mode, ok := domain.ParseKeyName(r.Key.Name)
	if !ok {
		return domain.TrackAnalysis{}, fmt.Errorf("%w: unrecognized key %q", domain.ErrInvalidAnalysis, r.Key.Name)
	}

	camelot := ""
	if r.Key.Camelot != nil {
		camelot = *r.Key.Camelot
	}
	if camelot == "" {
		camelot, _ = domain.CamelotFor(tonic, mode)
	}

	a := domain.TrackAnalysis{
		TempoBPM: r.BeatGrid.BPM,
		Key: domain.Key{
			Tonic:             tonic,
			Mode:              mode,
			Camelot:           camelot,
			TuningOffsetCents: r.Key.CentsOff,
		},
		Rhythm: domain.Rhythm{
			PulseClarity: r.Rhythm.PulseClarity,
			Complexity:   r.Rhythm.RhythmicComplexity,
		},
		SpectralBalance: domain.SpectralBalance{
			Low:  r.SpectralBalance.Low,
			Mid:  r.SpectralBalance.Mid,
			High: r.SpectralBalance.High,
		},
		Brightness: r.Brightness,
		Roughness:  r.Roughness.Estimated,
	}
	if r.Energy != nil {
		a.Energy = *r.Energy
	}
	return a, nil
}
