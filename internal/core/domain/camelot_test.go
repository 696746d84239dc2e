package domain

import (
	"fmt"
	"reflect"
	"testing"
)

func allCamelotCodes() []string {
	codes := make([]string, 0, 24)
	for n := 1; n <= 12; n++ {
		codes = append(codes, fmt.Sprintf("%dA", n), fmt.Sprintf("%dB", n))
	}
	return codes
}

func TestCamelotDistance_SymmetricAndBounded(t *testing.T) {
	codes := allCamelotCodes()
	for _, a := range codes {
		if d := CamelotDistance(a, a); d != 0 {
			t.Fatalf("distance(%s,%s): got %d, want 0", a, a, d)
		}
		for _, b := range codes {
			ab, ba := CamelotDistance(a, b), CamelotDistance(b, a)
			if ab != ba {
				t.Fatalf("distance(%s,%s)=%d but distance(%s,%s)=%d", a, b, ab, b, a, ba)
			}
			if ab < 0 || ab > 6 {
				t.Fatalf("distance(%s,%s)=%d out of [0,6]", a, b, ab)
			}
		}
	}
	if d := CamelotDistance("8B", "2A"); d != 6 {
		t.Fatalf("distance(8B,2A): got %d, want 6", d)
	}
}

func TestCamelotDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"8B", "8A", 0},
		{"8B", "9B", 1},
		{"12A", "1A", 1},
		{"1B", "11B", 2},
		{"3A", "10B", 5},
		{"8b", " 9B ", 1},
		{"13A", "1A", 6},
		{"", "1A", 6},
		{"8C", "8B", 6},
	}

	for _, tt := range tests {
		t.Run(tt.a+"-"+tt.b, func(t *testing.T) {
			if got := CamelotDistance(tt.a, tt.b); got != tt.want {
				t.Fatalf("CamelotDistance(%q, %q): got %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCamelotFor(t *testing.T) {
	// Table published by the spectral analysis service.
	want := map[string]string{
		"C": "8B", "G": "9B", "D": "10B", "A": "11B", "E": "12B", "B": "1B",
		"F#": "2B", "C#": "3B", "G#": "4B", "D#": "5B", "A#": "6B", "F": "7B",
		"Am": "8A", "Em": "9A", "Bm": "10A", "F#m": "11A", "C#m": "12A", "G#m": "1A",
		"D#m": "2A", "A#m": "3A", "Fm": "4A", "Cm": "5A", "Gm": "6A", "Dm": "7A",
	}

	for name, code := range want {
		tonic, mode, ok := ParseKeyName(name)
		if !ok {
			t.Fatalf("ParseKeyName(%q) failed", name)
		}
		got, ok := CamelotFor(tonic, mode)
		if !ok || got != code {
			t.Fatalf("CamelotFor(%s %s): got %q, want %q", tonic, mode, got, code)
		}
		back, ok := CamelotName(code)
		if !ok || back != tonic+" "+string(mode) {
			t.Fatalf("CamelotName(%s): got %q, want %q", code, back, tonic+" "+string(mode))
		}
	}

	if _, ok := CamelotFor("C", ""); ok {
		t.Fatal("CamelotFor with empty mode should fail")
	}
}

func TestParseKeyName(t *testing.T) {
	tests := []struct {
		in        string
		wantTonic string
		wantMode  Mode
		wantOK    bool
	}{
		{"C", "C", Major, true},
		{"C#m", "C#", Minor, true},
		{"Db major", "C#", Major, true},
		{"A Minor", "A", Minor, true},
		{"bbm", "A#", Minor, true},
		{"Gmin", "G", Minor, true},
		{"F♯ minor", "F#", Minor, true},
		{"Cb", "B", Major, true},
		{"H", "", "", false},
		{"C dorian", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tonic, mode, ok := ParseKeyName(tt.in)
			if ok != tt.wantOK || tonic != tt.wantTonic || mode != tt.wantMode {
				t.Fatalf("ParseKeyName(%q): got (%q, %q, %v), want (%q, %q, %v)",
					tt.in, tonic, mode, ok, tt.wantTonic, tt.wantMode, tt.wantOK)
			}
		})
	}
}

func TestCompatibleKeys(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{"8B", []string{"8B", "8A", "7B", "9B"}},
		{"1A", []string{"1A", "1B", "12A", "2A"}},
		{"12b", []string{"12B", "12A", "11B", "1B"}},
		{"nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := CompatibleKeys(tt.code); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("CompatibleKeys(%q): got %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestKey_CamelotCode(t *testing.T) {
	if got := (Key{Tonic: "A", Mode: Minor, Camelot: "5A"}).CamelotCode(); got != "5A" {
		t.Fatalf("explicit code should win: got %q", got)
	}
	if got := (Key{Tonic: "A", Mode: Minor}).CamelotCode(); got != "8A" {
		t.Fatalf("derived code: got %q, want 8A", got)
	}
	if got := (Key{}).CamelotCode(); got != "" {
		t.Fatalf("empty key: got %q, want empty", got)
	}
}
