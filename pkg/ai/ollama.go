package ai

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// maxGenerateRetries bounds completion retries after the first attempt,
// giving three attempts in total.
const maxGenerateRetries = 2

// OllamaClient talks to an Ollama daemon through its OpenAI-compatible
// endpoint. It serves both text generation and embeddings.
type OllamaClient struct {
	client        *openai.Client
	chatModel     string
	embedModel    string
	pullOnMissing bool
	logger        *zap.Logger
	newBackOff    func() backoff.BackOff
}

// NewOllamaClient creates a client for the configured endpoint
func NewOllamaClient(cfg *config.OllamaConfig, logger *zap.Logger) *OllamaClient {
	apiCfg := openai.DefaultConfig("ollama")
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"

	return &OllamaClient{
		client:        openai.NewClientWithConfig(apiCfg),
		chatModel:     cfg.ChatModel,
		embedModel:    cfg.EmbedModel,
		pullOnMissing: cfg.PullOnMissing,
		logger:        logger,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 2 * time.Second
			bo.MaxElapsedTime = 30 * time.Second
			bo.MaxInterval = 10 * time.Second
			return backoff.WithMaxRetries(bo, maxGenerateRetries)
		},
	}
}

// Generate runs one chat completion and returns the assistant content.
// Transient failures are retried with exponential backoff, three attempts
// at most; a missing model triggers a single pull recovery before the
// call is retried.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, jsonResponse bool, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	}
	if jsonResponse {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	pulled := false
	var content string
	callFn := func() error {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			if c.isModelMissing(err) && c.pullOnMissing && !pulled {
				pulled = true
				if pullErr := c.pullModel(ctx, c.chatModel); pullErr != nil && c.logger != nil {
					c.logger.Warn("⚠️ Model pull failed",
						zap.String("model", c.chatModel),
						zap.Error(pullErr),
					)
				}
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(callFn, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return content, nil
}

// Embed returns one embedding vector per input text
func (c *OllamaClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// isModelMissing detects the Ollama "model not found" failure shape
func (c *OllamaClient) isModelMissing(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 404 {
			return true
		}
		return strings.Contains(strings.ToLower(apiErr.Message), "not found")
	}
	return false
}

// pullModel shells out to the local daemon to fetch the missing model
func (c *OllamaClient) pullModel(ctx context.Context, model string) error {
	if c.logger != nil {
		c.logger.Info("📥 Pulling missing model",
			zap.String("model", model),
		)
	}
	cmd := exec.CommandContext(ctx, "ollama", "pull", model)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ollama pull %s: %w (%s)", model, err, strings.TrimSpace(string(out)))
	}
	if c.logger != nil {
		c.logger.Info("✅ Model pulled",
			zap.String("model", model),
		)
	}
	return nil
}
