package llm

import (
	"context"
	"testing"

	"healthpage/internal/similarity"
	"healthpage/internal/store"
)

type countingEmbedder struct {
	batches [][]string
	inner   *HashEmbedder
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	c.batches = append(c.batches, append([]string(nil), texts...))
	return c.inner.Embed(ctx, texts)
}

func TestCachedEmbedderEmbedsOnlyMisses(t *testing.T) {
	db, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer db.Close()

	inner := &countingEmbedder{inner: NewHashEmbedder(32)}
	cached := NewCachedEmbedder(inner, "hash-32", db)

	first, err := cached.Embed(context.Background(), []string{"walk daily", "eat greens"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := cached.Embed(context.Background(), []string{"eat greens", "sleep well", "walk daily"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(inner.batches) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(inner.batches))
	}
	if len(inner.batches[1]) != 1 || inner.batches[1][0] != "sleep well" {
		t.Errorf("Expected only the miss in the second batch, got %v", inner.batches[1])
	}

	if similarity.CosineSimilarity(first[0], second[2]) < 0.9999 || similarity.CosineSimilarity(first[1], second[0]) < 0.9999 {
		t.Error("Expected cached vectors to be returned in input order")
	}
}

func TestCachedEmbedderSeparatesModels(t *testing.T) {
	db, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer db.Close()

	a := &countingEmbedder{inner: NewHashEmbedder(16)}
	b := &countingEmbedder{inner: NewHashEmbedder(16)}
	if _, err := NewCachedEmbedder(a, "model-a", db).Embed(context.Background(), []string{"stretch"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if _, err := NewCachedEmbedder(b, "model-b", db).Embed(context.Background(), []string{"stretch"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(b.batches) != 1 {
		t.Error("Expected a different model to miss the cache")
	}
}
