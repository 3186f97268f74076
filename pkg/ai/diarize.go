package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// DiarizationClient calls a speaker-diarization sidecar over HTTP. The
// sidecar wraps a pyannote pipeline and shares the audio filesystem with
// this service.
type DiarizationClient struct {
	enabled     bool
	baseURL     string
	hfToken     string
	numSpeakers int
	minSpeakers int
	maxSpeakers int
	client      *http.Client
	logger      *zap.Logger
}

// NewDiarizationClient creates a diarization client
func NewDiarizationClient(cfg *config.DiarizationConfig, logger *zap.Logger) *DiarizationClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &DiarizationClient{
		enabled:     cfg.Enabled,
		baseURL:     cfg.BaseURL,
		hfToken:     cfg.HFToken,
		numSpeakers: cfg.NumSpeakers,
		minSpeakers: cfg.MinSpeakers,
		maxSpeakers: cfg.MaxSpeakers,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// diarizeRequest is the payload for the sidecar /diarize endpoint
type diarizeRequest struct {
	AudioPath   string `json:"audio_path"`
	NumSpeakers int    `json:"num_speakers,omitempty"`
	MinSpeakers int    `json:"min_speakers,omitempty"`
	MaxSpeakers int    `json:"max_speakers,omitempty"`
}

// diarizeResponse is the sidecar response shape
type diarizeResponse struct {
	Turns []Turn `json:"turns"`
}

// Diarize returns who-spoke-when turns for the audio file. Returns
// ErrUnavailable when diarization is disabled or unauthenticated, which
// callers absorb by keeping engine-provided speaker labels.
func (c *DiarizationClient) Diarize(ctx context.Context, audioPath string) ([]Turn, error) {
	if !c.enabled {
		return nil, fmt.Errorf("diarization disabled: %w", ErrUnavailable)
	}
	if c.hfToken == "" {
		return nil, fmt.Errorf("diarization token missing: %w", ErrUnavailable)
	}

	body, err := json.Marshal(diarizeRequest{
		AudioPath:   audioPath,
		NumSpeakers: c.numSpeakers,
		MinSpeakers: c.minSpeakers,
		MaxSpeakers: c.maxSpeakers,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/diarize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.hfToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarization request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("diarization sidecar returned status %d", resp.StatusCode)
	}

	var dr diarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("✅ Diarization finished",
			zap.String("audio", audioPath),
			zap.Int("turns", len(dr.Turns)),
		)
	}
	return dr.Turns, nil
}
