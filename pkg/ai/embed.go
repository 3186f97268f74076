package ai

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"go.uber.org/zap"
)

// HashEmbed builds a deterministic bag-of-words vector by hashing tokens
// into dim buckets and L2-normalizing. Quality is far below a real
// embedding model but the output is stable, which keeps the semantic
// index usable when the model is down.
func HashEmbed(text string, dim int) []float32 {
	vec := make([]float32, dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// modelEmbedder is the subset of OllamaClient used by FallbackEmbedder
type modelEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// FallbackEmbedder tries the embedding model first and degrades to hashed
// vectors when the model call fails. All vectors share one dimension so
// they land in the same index either way.
type FallbackEmbedder struct {
	model  modelEmbedder
	dim    int
	logger *zap.Logger
}

// NewFallbackEmbedder wraps a model embedder with the hashed fallback
func NewFallbackEmbedder(model modelEmbedder, dim int, logger *zap.Logger) *FallbackEmbedder {
	return &FallbackEmbedder{model: model, dim: dim, logger: logger}
}

// Embed returns one vector per text, truncating or padding model vectors
// to the configured dimension
func (e *FallbackEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if e.model != nil {
		vectors, err := e.model.Embed(ctx, texts)
		if err == nil {
			for i, v := range vectors {
				vectors[i] = fitDimension(v, e.dim)
			}
			return vectors, nil
		}
		if e.logger != nil {
			e.logger.Warn("⚠️ Embedding model failed, using hashed vectors",
				zap.Error(err),
			)
		}
	}

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = HashEmbed(t, e.dim)
	}
	return vectors, nil
}

func fitDimension(v []float32, dim int) []float32 {
	if len(v) == dim {
		return v
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}
