package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/hajimehoshi/go-mp3"
)

const (
	// rmsFrameSamples matches the 2048-sample frames the analysis service uses.
	rmsFrameSamples = 2048
	maxAudioBytes   = 32 << 20
)

// EnergyProbe estimates a track's energy from its audio.
type EnergyProbe interface {
	Energy(ctx context.Context, audioURL string) (float64, error)
}

// MP3Probe downloads an MP3 and measures energy as mean(rms)/max(rms)
// over fixed frames of the mono mixdown.
type MP3Probe struct {
	httpClient *http.Client
}

func NewMP3Probe(httpClient *http.Client) *MP3Probe {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MP3Probe{httpClient: httpClient}
}

func (p *MP3Probe) Energy(ctx context.Context, audioURL string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return 0, fmt.Errorf("energy probe: %w", err)
	}
	// #nosec G107 -- audio URL was validated as absolute http(s) when the song was registered
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("energy probe: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("energy probe: fetch status %d", resp.StatusCode)
	}

	decoder, err := mp3.NewDecoder(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return 0, fmt.Errorf("energy probe: decode failed: %w", err)
	}
	return energyFromPCM(decoder)
}

// energyFromPCM reads 16-bit little-endian interleaved stereo PCM, the
// format go-mp3 always produces.
func energyFromPCM(r io.Reader) (float64, error) {
	buf := make([]byte, 4*rmsFrameSamples)
	var rms []float64

	for {
		n, err := io.ReadFull(r, buf)
		if n >= 4 {
			rms = append(rms, frameRMS(buf[:n-n%4]))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, fmt.Errorf("energy probe: read failed: %w", err)
		}
	}

	if len(rms) == 0 {
		return 0, errors.New("energy probe: audio contains no samples")
	}

	var sum, peak float64
	for _, v := range rms {
		sum += v
		peak = math.Max(peak, v)
	}
	energy := (sum / float64(len(rms))) / (peak + 1e-6)
	return math.Min(1, math.Max(0, energy)), nil
}

func frameRMS(frame []byte) float64 {
	var sumSquares float64
	count := 0
	for i := 0; i+3 < len(frame); i += 4 {
		left := int16(frame[i]) | int16(frame[i+1])<<8
		right := int16(frame[i+2]) | int16(frame[i+3])<<8
		mono := (float64(left) + float64(right)) / 2 / 32768.0
		sumSquares += mono * mono
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sumSquares / float64(count))
}
