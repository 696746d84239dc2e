package analysis

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stereoPCM encodes frames of constant amplitude, one amplitude per
// rmsFrameSamples-long frame.
func stereoPCM(amplitudes ...int16) []byte {
	var buf bytes.Buffer
	for _, amp := range amplitudes {
		for i := 0; i < rmsFrameSamples; i++ {
			_ = binary.Write(&buf, binary.LittleEndian, amp)
			_ = binary.Write(&buf, binary.LittleEndian, amp)
		}
	}
	return buf.Bytes()
}

func TestEnergyFromPCM(t *testing.T) {
	tests := []struct {
		name    string
		pcm     []byte
		want    float64
		wantErr bool
	}{
		{name: "steady level is full energy", pcm: stereoPCM(8000, 8000, 8000), want: 1},
		{name: "one loud frame among quiet ones", pcm: stereoPCM(16000, 4000, 4000, 0), want: 0.375},
		{name: "silence", pcm: stereoPCM(0, 0), want: 0},
		{name: "empty", pcm: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := energyFromPCM(bytes.NewReader(tt.pcm))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-3 {
				t.Fatalf("energy: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMP3Probe_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp3" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("definitely not an mp3"))
	}))
	defer ts.Close()

	probe := NewMP3Probe(ts.Client())
	for _, path := range []string{"/missing.mp3", "/garbage.mp3"} {
		if _, err := probe.Energy(context.Background(), ts.URL+path); err == nil {
			t.Fatalf("%s: expected error", path)
		}
	}
}
