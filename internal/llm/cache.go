package llm

import (
	"context"
	"fmt"

	"healthpage/internal/logger"
)

// EmbeddingCache persists vectors keyed by model and text.
type EmbeddingCache interface {
	GetCachedEmbedding(model, text string) ([]float64, bool, error)
	CacheEmbedding(model, text string, vector []float64) error
}

// Embedder turns texts into vectors, one per input in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// CachedEmbedder serves repeated texts from a cache and embeds only the misses, in one batch.
type CachedEmbedder struct {
	next  Embedder
	model string
	cache EmbeddingCache
}

// NewCachedEmbedder wraps next. model namespaces the cache so vectors from different models never mix.
func NewCachedEmbedder(next Embedder, model string, cache EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{next: next, model: model, cache: cache}
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		vec, ok, err := c.cache.GetCachedEmbedding(c.model, text)
		if err != nil {
			logger.Warn("Embedding cache lookup failed", "model", c.model, "error", err.Error())
		}
		if ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := c.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missing))
	}

	for j, vec := range fresh {
		vectors[missingIdx[j]] = vec
		if err := c.cache.CacheEmbedding(c.model, missing[j], vec); err != nil {
			logger.Warn("Failed to cache embedding", "model", c.model, "error", err.Error())
		}
	}

	logger.Debug("Embedded texts", "model", c.model, "cached", len(texts)-len(missing), "embedded", len(missing))
	return vectors, nil
}
