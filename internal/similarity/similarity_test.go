package similarity

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

type mapEmbedder struct {
	vectors map[string][]float64
	err     error
	short   bool
}

func (m *mapEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		out = append(out, m.vectors[text])
	}
	if m.short {
		return out[:len(out)-1], nil
	}
	return out, nil
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"length mismatch", []float64{1, 0}, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndexCompare(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float64{
		"q1": {1, 0},
		"q2": {0, 1},
		"c1": {1, 0},
		"c2": {1, 1},
		"c3": {0, 1},
	}}

	m, err := NewIndex(embedder).Compare(context.Background(), []string{"q1", "q2"}, []string{"c1", "c2", "c3"})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(m) != 2 || len(m[0]) != 3 {
		t.Fatalf("Expected 2x3 matrix, got %dx%d", len(m), len(m[0]))
	}
	if got := m.Ranking(0); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("Expected ranking [0 1 2] for q1, got %v", got)
	}
	if got := m.Ranking(1); !reflect.DeepEqual(got, []int{2, 1, 0}) {
		t.Errorf("Expected ranking [2 1 0] for q2, got %v", got)
	}
}

func TestIndexCompare_EmptyInputsSkipEmbedding(t *testing.T) {
	embedder := &mapEmbedder{err: errors.New("should not be called")}
	m, err := NewIndex(embedder).Compare(context.Background(), []string{"q"}, nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("Expected empty matrix, got %v", m)
	}
}

func TestIndexCompare_Errors(t *testing.T) {
	_, err := NewIndex(&mapEmbedder{err: errors.New("quota")}).Compare(context.Background(), []string{"q"}, []string{"c"})
	if err == nil {
		t.Error("Expected embedder error to propagate")
	}

	short := &mapEmbedder{vectors: map[string][]float64{}, short: true}
	_, err = NewIndex(short).Compare(context.Background(), []string{"q"}, []string{"c"})
	if err == nil {
		t.Error("Expected error when the embedder returns too few vectors")
	}
}

func TestRanking_TiesKeepCandidateOrder(t *testing.T) {
	m := Matrix{{0.5, 0.9, 0.5, 0.9, math.NaN(), 0.1}}
	want := []int{1, 3, 0, 2, 5, 4}
	if got := m.Ranking(0); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	// Repeated calls must agree.
	for i := 0; i < 5; i++ {
		if got := m.Ranking(0); !reflect.DeepEqual(got, want) {
			t.Fatalf("Ranking not deterministic on call %d: %v", i, got)
		}
	}
}

func TestRanking_OutOfRange(t *testing.T) {
	m := Matrix{{1}}
	if got := m.Ranking(3); got != nil {
		t.Errorf("Expected nil ranking for missing row, got %v", got)
	}
	if got := m.Rankings(); len(got) != 1 {
		t.Errorf("Expected one ranking, got %d", len(got))
	}
}
