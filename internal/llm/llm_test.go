package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"healthpage/internal/similarity"
)

func TestNewClient_Success(t *testing.T) {
	// Skip if no API key available (for CI/CD)
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	client, err := NewClient(context.Background(), Options{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.ModelName() != DefaultModel {
		t.Errorf("Expected default model %s, got %s", DefaultModel, client.ModelName())
	}
	if client.embeddingModel != DefaultEmbeddingModel || client.dimensions != DefaultEmbeddingDimensions {
		t.Errorf("Expected embedding defaults, got %s/%d", client.embeddingModel, client.dimensions)
	}
	if client.captionModel != client.modelName {
		t.Errorf("Expected caption model to default to generation model, got %s", client.captionModel)
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "")

	_, err := NewClient(context.Background(), Options{})
	if err == nil {
		t.Fatal("Expected error when no API key is available")
	}
	if !strings.Contains(err.Error(), "gemini API key is required") {
		t.Errorf("Expected API key error, got: %v", err)
	}
}

func TestHashEmbedder(t *testing.T) {
	h := NewHashEmbedder(0)
	if h.Dimensions != 256 {
		t.Errorf("Expected default dimensions 256, got %d", h.Dimensions)
	}

	vectors, err := h.Embed(context.Background(), []string{
		"Stretch. Stay flexible with daily stretching",
		"a person stretching on a yoga mat",
		"a bowl of fresh vegetables",
		"",
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 4 {
		t.Fatalf("Expected 4 vectors, got %d", len(vectors))
	}

	related := similarity.CosineSimilarity(vectors[0], vectors[1])
	unrelated := similarity.CosineSimilarity(vectors[0], vectors[2])
	if related <= unrelated {
		t.Errorf("Expected related texts to score higher: related=%f unrelated=%f", related, unrelated)
	}
	if similarity.CosineSimilarity(vectors[3], vectors[0]) != 0 {
		t.Error("Expected empty text to have zero similarity")
	}

	again, _ := h.Embed(context.Background(), []string{"Stretch. Stay flexible with daily stretching"})
	if similarity.CosineSimilarity(again[0], vectors[0]) < 0.9999 {
		t.Error("Expected hashing to be deterministic")
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"stretching": "stretch",
		"walked":     "walk",
		"vegetables": "vegetabl",
		"eggs":       "egg",
		"bus":        "bus",
	}
	for in, want := range tests {
		if got := stem(in); got != want {
			t.Errorf("stem(%q) = %q, want %q", in, got, want)
		}
	}
}

// writeFakeOllama creates a shell script standing in for the ollama binary.
func writeFakeOllama(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ollama")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write fake ollama: %v", err)
	}
	return path
}

func TestOllamaGenerator(t *testing.T) {
	bin := writeFakeOllama(t, `echo "model=$2"; echo "<think>planning</think>"; cat`)

	g := NewOllamaGenerator(bin, "")
	out, err := g.Generate(context.Background(), "<!DOCTYPE html><html></html>")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "model="+DefaultOllamaModel) {
		t.Errorf("Expected default model passed as argument, got %q", out)
	}
	if !strings.Contains(out, "<!DOCTYPE html><html></html>") {
		t.Errorf("Expected prompt echoed from stdin, got %q", out)
	}
	if strings.Contains(out, "planning") {
		t.Errorf("Expected reasoning block stripped, got %q", out)
	}
}

func TestOllamaGenerator_Failure(t *testing.T) {
	bin := writeFakeOllama(t, `echo "model not found" >&2; exit 1`)

	_, err := NewOllamaGenerator(bin, "missing").Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected error from failing binary")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Expected stderr in error, got: %v", err)
	}
}

func TestOllamaGenerator_Timeout(t *testing.T) {
	bin := writeFakeOllama(t, `exec sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewOllamaGenerator(bin, "slow").Generate(ctx, "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

func TestTracedGenerator(t *testing.T) {
	out, err := NewTracedGenerator(stubGenerator{text: "<html></html>"}, "stub").Generate(context.Background(), "prompt")
	if err != nil || out != "<html></html>" {
		t.Errorf("Expected passthrough result, got %q, %v", out, err)
	}

	boom := errors.New("boom")
	if _, err := NewTracedGenerator(stubGenerator{err: boom}, "stub").Generate(context.Background(), "prompt"); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped error passed through, got %v", err)
	}
}
