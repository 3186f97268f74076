package ai

import (
	"context"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// AssemblyAIClient is the cloud transcription engine built on the
// official SDK. It uploads the local audio file and blocks until the
// transcript is complete.
type AssemblyAIClient struct {
	client *aai.Client
	apiKey string
	logger *zap.Logger
}

// NewAssemblyAIClient creates an AssemblyAI transcription engine
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAIClient {
	return &AssemblyAIClient{
		client: aai.NewClient(cfg.APIKey),
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// Transcribe uploads the audio file and returns ordered segments plus the
// detected language. Returns ErrUnavailable when no API key is configured.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audioPath string) ([]Segment, string, error) {
	if c.apiKey == "" {
		return nil, "", fmt.Errorf("assemblyai api key missing: %w", ErrUnavailable)
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	if c.logger != nil {
		c.logger.Info("📤 Uploading audio to AssemblyAI",
			zap.String("audio", audioPath),
		)
	}

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels:     aai.Bool(true),
		LanguageDetection: aai.Bool(true),
	}

	transcript, err := c.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return nil, "", fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, "", fmt.Errorf("assemblyai error: %s", msg)
	}

	language := string(transcript.LanguageCode)

	segments := make([]Segment, 0, len(transcript.Utterances))
	for _, utt := range transcript.Utterances {
		seg := Segment{}
		if utt.Text != nil {
			seg.Text = *utt.Text
		}
		if seg.Text == "" {
			continue
		}
		if utt.Speaker != nil {
			seg.Speaker = *utt.Speaker
		}
		if utt.Start != nil {
			seg.Start = float64(*utt.Start) / 1000.0 // ms to seconds
		}
		if utt.End != nil {
			seg.End = float64(*utt.End) / 1000.0
		}
		if utt.Confidence != nil {
			seg.Confidence = *utt.Confidence
		}
		segments = append(segments, seg)
	}

	// Some short recordings come back without utterances; fall back to
	// the flat transcript text.
	if len(segments) == 0 && transcript.Text != nil && *transcript.Text != "" {
		var end float64
		if transcript.AudioDuration != nil {
			end = *transcript.AudioDuration
		}
		segments = append(segments, Segment{Start: 0, End: end, Text: *transcript.Text})
	}

	if c.logger != nil {
		c.logger.Info("✅ AssemblyAI transcript ready",
			zap.Int("segments", len(segments)),
			zap.String("language", language),
		)
	}
	return segments, language, nil
}
