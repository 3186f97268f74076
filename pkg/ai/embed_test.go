package ai

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestHashEmbed_DeterministicAndNormalized(t *testing.T) {
	a := HashEmbed("ship the quarterly report", 256)
	b := HashEmbed("ship the quarterly report", 256)

	if len(a) != 256 {
		t.Fatalf("expected 256 dims, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("expected unit norm, got %v", norm)
	}
}

func TestHashEmbed_EmptyText(t *testing.T) {
	v := HashEmbed("", 64)
	for i, x := range v {
		if x != 0 {
			t.Fatalf("expected zero vector, got %v at %d", x, i)
		}
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("model down")
}

type fixedEmbedder struct {
	dim int
}

func (e fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
		out[i][0] = 1
	}
	return out, nil
}

func TestFallbackEmbedder_UsesHashedVectorsOnFailure(t *testing.T) {
	e := NewFallbackEmbedder(failingEmbedder{}, 128, nil)

	vectors, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("fallback should absorb model failure: %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 128 {
		t.Fatalf("unexpected shape: %d x %d", len(vectors), len(vectors[0]))
	}
}

func TestFallbackEmbedder_FitsModelDimension(t *testing.T) {
	e := NewFallbackEmbedder(fixedEmbedder{dim: 300}, 128, nil)

	vectors, err := e.Embed(context.Background(), []string{"alpha"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vectors[0]) != 128 {
		t.Fatalf("expected 128 dims, got %d", len(vectors[0]))
	}
}
