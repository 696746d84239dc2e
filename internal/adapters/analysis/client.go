// Package analysis is the HTTP client for the external audio analysis
// service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
	"github.com/ewilliams-labs/mashability/internal/core/ports"
)

const probeTimeout = 30 * time.Second

// Client is an HTTP client for the analysis service.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
	energy      EnergyProbe
	log         *zap.SugaredLogger
}

// compile-time interface assertions
var (
	_ ports.AnalysisProvider = (*Client)(nil)
	_ ports.Pinger           = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the attempt budget and the first backoff delay.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseBackoff = baseBackoff
	}
}

func WithEnergyProbe(p EnergyProbe) Option {
	return func(c *Client) { c.energy = p }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient constructs a new analysis client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	if c.energy == nil {
		// Audio is fetched without the service credentials.
		c.energy = NewMP3Probe(&http.Client{Timeout: probeTimeout})
	}
	return c
}

// Analyze asks the service to analyse a song's audio and maps the result.
// Failures of the service itself are reported as ports.UpstreamError.
func (c *Client) Analyze(ctx context.Context, song domain.Song) (domain.TrackAnalysis, error) {
	body, err := json.Marshal(analyzeRequest{SongID: song.ID, AudioURL: song.AudioURL})
	if err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("analysis adapter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("analysis adapter: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.TrackAnalysis{}, err
		}
		return domain.TrackAnalysis{}, fmt.Errorf("%w: %w", ports.UpstreamError{SongID: song.ID}, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.TrackAnalysis{}, fmt.Errorf("analysis adapter: %w", ports.UpstreamError{SongID: song.ID, Status: resp.StatusCode})
	}

	var payload analysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("analysis adapter: decode response: %w: %w", ports.UpstreamError{SongID: song.ID}, err)
	}
	if len(payload.Diagnostics.Warnings) > 0 {
		c.log.Infow("analysis service warnings", "song_id", song.ID, "warnings", payload.Diagnostics.Warnings)
	}

	a, err := mapAnalysisToDomain(payload)
	if err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("analysis adapter: %w: %w", ports.UpstreamError{SongID: song.ID}, err)
	}

	if payload.Energy == nil {
		c.log.Infow("analysis missing energy, probing audio", "song_id", song.ID)
		e, err := c.energy.Energy(ctx, song.AudioURL)
		if err != nil {
			return domain.TrackAnalysis{}, fmt.Errorf("analysis adapter: %w: %w", ports.UpstreamError{SongID: song.ID}, err)
		}
		a.Energy = e
	}

	if err := a.Validate(); err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("analysis adapter: %w: %w", ports.UpstreamError{SongID: song.ID}, err)
	}
	return a, nil
}

// Ping checks the service's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("analysis adapter: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analysis adapter: health check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("analysis adapter: health check status %d", resp.StatusCode)
	}
	return nil
}
