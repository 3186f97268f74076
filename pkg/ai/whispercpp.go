package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// WhisperCPPClient runs a local whisper.cpp binary as a subprocess and
// parses its JSON output. No Go binding exists for the model runtime, so
// the subprocess boundary is the integration point.
type WhisperCPPClient struct {
	binaryPath string
	modelPath  string
	language   string
	threads    int
	gpuLayers  int
	diarize    bool
	logger     *zap.Logger
}

// NewWhisperCPPClient creates a whisper.cpp transcription engine
func NewWhisperCPPClient(cfg *config.WhisperConfig, logger *zap.Logger) *WhisperCPPClient {
	return &WhisperCPPClient{
		binaryPath: cfg.BinaryPath,
		modelPath:  cfg.ModelPath,
		language:   cfg.Language,
		threads:    cfg.Threads,
		gpuLayers:  cfg.GPULayers,
		diarize:    cfg.Diarize,
		logger:     logger,
	}
}

// whisperOutput mirrors the file written by whisper.cpp -oj
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text    string `json:"text"`
		Speaker string `json:"speaker,omitempty"`
	} `json:"transcription"`
}

// Transcribe runs the binary against an audio file and returns ordered
// segments plus the detected language. Returns ErrUnavailable when the
// binary or model is not present.
func (c *WhisperCPPClient) Transcribe(ctx context.Context, audioPath string) ([]Segment, string, error) {
	if _, err := os.Stat(c.binaryPath); err != nil {
		return nil, "", fmt.Errorf("whisper binary %s: %w", c.binaryPath, ErrUnavailable)
	}
	if _, err := os.Stat(c.modelPath); err != nil {
		return nil, "", fmt.Errorf("whisper model %s: %w", c.modelPath, ErrUnavailable)
	}

	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)
	outPrefix := filepath.Join(outDir, "transcript")

	args := []string{
		"-m", c.modelPath,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
		"-t", strconv.Itoa(c.threads),
		"--no-prints",
	}
	if c.language != "" {
		args = append(args, "-l", c.language)
	}
	if c.gpuLayers > 0 {
		args = append(args, "-ngl", strconv.Itoa(c.gpuLayers))
	}
	if c.diarize {
		args = append(args, "--diarize")
	}

	if c.logger != nil {
		c.logger.Info("🎙️ Running whisper.cpp",
			zap.String("audio", audioPath),
			zap.String("model", c.modelPath),
		)
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, "", fmt.Errorf("whisper.cpp failed: %w (%s)", err, truncate(string(out), 500))
	}

	raw, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, "", fmt.Errorf("read whisper output: %w", err)
	}

	var parsed whisperOutput
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, "", fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(parsed.Transcription))
	for _, t := range parsed.Transcription {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start:   float64(t.Offsets.From) / 1000.0, // ms to seconds
			End:     float64(t.Offsets.To) / 1000.0,
			Speaker: t.Speaker,
			Text:    text,
		})
	}

	if c.logger != nil {
		c.logger.Info("✅ Transcription finished",
			zap.Int("segments", len(segments)),
			zap.String("language", parsed.Result.Language),
		)
	}
	return segments, parsed.Result.Language, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
