// Package similarity compares texts through externally produced embedding vectors.
package similarity

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// Embedder turns texts into vectors. Implementations call an embedding model.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Matrix holds similarity scores, one row per query and one column per candidate.
type Matrix [][]float64

// Index computes query/candidate similarity matrices with an Embedder.
type Index struct {
	embedder Embedder
}

// NewIndex creates an Index backed by the given embedder.
func NewIndex(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Compare embeds queries and candidates and returns the N×M cosine similarity matrix.
func (ix *Index) Compare(ctx context.Context, queries, candidates []string) (Matrix, error) {
	if len(queries) == 0 || len(candidates) == 0 {
		return Matrix{}, nil
	}

	queryVecs, err := ix.embed(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("failed to embed queries: %w", err)
	}
	candidateVecs, err := ix.embed(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to embed candidates: %w", err)
	}

	return Build(queryVecs, candidateVecs), nil
}

func (ix *Index) embed(ctx context.Context, texts []string) ([][]float64, error) {
	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}

// Build computes the cosine similarity matrix for already embedded vectors.
func Build(queries, candidates [][]float64) Matrix {
	m := make(Matrix, len(queries))
	for i, q := range queries {
		row := make([]float64, len(candidates))
		for j, c := range candidates {
			row[j] = CosineSimilarity(q, c)
		}
		m[i] = row
	}
	return m
}

// Ranking returns candidate indices for a query row in descending similarity.
// Equal scores keep ascending candidate order; NaN scores sort last.
func (m Matrix) Ranking(row int) []int {
	if row < 0 || row >= len(m) {
		return nil
	}
	scores := m[row]
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		sa, sb := scores[a], scores[b]
		switch {
		case math.IsNaN(sa) && math.IsNaN(sb):
			return 0
		case math.IsNaN(sa):
			return 1
		case math.IsNaN(sb):
			return -1
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
	return order
}

// Rankings returns Ranking for every row.
func (m Matrix) Rankings() [][]int {
	out := make([][]int, len(m))
	for i := range m {
		out[i] = m.Ranking(i)
	}
	return out
}

// CosineSimilarity calculates the cosine similarity between two embeddings
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
