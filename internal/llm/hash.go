package llm

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashEmbedder is an offline embedder that hashes word tokens into a fixed-size
// bag-of-words vector. Texts sharing words score higher under cosine similarity.
type HashEmbedder struct {
	Dimensions int
}

// NewHashEmbedder returns a HashEmbedder; non-positive dims default to 256.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashEmbedder{Dimensions: dims}
}

func (h *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = h.vector(text)
	}
	return vectors, nil
}

func (h *HashEmbedder) vector(text string) []float64 {
	v := make([]float64, h.Dimensions)
	for _, token := range tokenize(text) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(token))
		v[int(f.Sum32()%uint32(h.Dimensions))]++
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}

func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := words[:0]
	for _, w := range words {
		if len(w) > 2 {
			tokens = append(tokens, stem(w))
		}
	}
	return tokens
}

// stem strips a few common English suffixes so "stretching" and "stretch" collide.
func stem(w string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if len(w) > len(suffix)+2 && strings.HasSuffix(w, suffix) {
			return strings.TrimSuffix(w, suffix)
		}
	}
	return w
}
