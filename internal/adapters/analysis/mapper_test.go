package analysis

import (
	"errors"
	"testing"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

func TestMapAnalysisToDomain_Keys(t *testing.T) {
	camelot := func(s string) *string { return &s }

	tests := []struct {
		name        string
		key         keyEstimate
		wantTonic   string
		wantMode    domain.Mode
		wantCamelot string
		wantErr     bool
	}{
		{name: "minor with camelot", key: keyEstimate{Name: "Am", Camelot: camelot("8A")}, wantTonic: "A", wantMode: domain.Minor, wantCamelot: "8A"},
		{name: "null camelot is derived", key: keyEstimate{Name: "G"}, wantTonic: "G", wantMode: domain.Major, wantCamelot: "9B"},
		{name: "empty camelot is derived", key: keyEstimate{Name: "D#m", Camelot: camelot("")}, wantTonic: "D#", wantMode: domain.Minor, wantCamelot: "2A"},
		{name: "flat spelling", key: keyEstimate{Name: "Bb minor"}, wantTonic: "A#", wantMode: domain.Minor, wantCamelot: "3A"},
		{name: "missing name", key: keyEstimate{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapAnalysisToDomain(analysisResponse{Key: tt.key})
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidAnalysis) {
					t.Fatalf("expected ErrInvalidAnalysis, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Key.Tonic != tt.wantTonic || got.Key.Mode != tt.wantMode || got.Key.Camelot != tt.wantCamelot {
				t.Fatalf("key: got %+v", got.Key)
			}
		})
	}
}
