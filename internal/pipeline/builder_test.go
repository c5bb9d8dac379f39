package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"healthpage/internal/config"
)

func offlineConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	tipsFile := filepath.Join(dir, "tips.yaml")
	if err := os.WriteFile(tipsFile, []byte("- title: Stretch\n  description: Stay flexible\n"), 0644); err != nil {
		t.Fatalf("Failed to write tips: %v", err)
	}

	cfg := &config.Config{}
	cfg.AI.Gemini.APIKey = "test-key"
	cfg.AI.Gemini.CaptionModel = "gemini-flash-lite-latest"
	cfg.Generation.Provider = "ollama"
	cfg.Generation.Timeout = "5s"
	cfg.Embedding.Provider = "hash"
	cfg.Embedding.Dimensions = 64
	cfg.Images.Directory = filepath.Join(dir, "images")
	cfg.Images.Captioner = "gemini"
	cfg.Images.Concurrency = 2
	cfg.Tips.Source = "file"
	cfg.Tips.File = tipsFile
	cfg.Tips.SampleSize = 5
	cfg.Matching.Strategy = "optimal"
	cfg.Render.OutputFile = filepath.Join(dir, "page.html")
	cfg.Render.ImageWidth = 300
	cfg.Render.UnmatchedContent = "preserve"
	cfg.Cache.Enabled = true
	cfg.Cache.Directory = filepath.Join(dir, "cache")
	return cfg
}

func TestBuild(t *testing.T) {
	cfg := offlineConfig(t)

	orch, err := NewBuilder(cfg).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer orch.Close()

	if orch.recorder == nil {
		t.Error("Expected run history with caching enabled")
	}
	if orch.config.GeneratorName != "Ollama" {
		t.Errorf("Expected Ollama generator, got %s", orch.config.GeneratorName)
	}
	if orch.config.Unmatched != "preserve" {
		t.Errorf("Expected preserve policy, got %s", orch.config.Unmatched)
	}
	if _, err := os.Stat(filepath.Join(cfg.Cache.Directory, "healthpage.db")); err != nil {
		t.Errorf("Expected cache database: %v", err)
	}
}

func TestBuildWithoutCache(t *testing.T) {
	cfg := offlineConfig(t)

	orch, err := NewBuilder(cfg).WithoutCache().Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer orch.Close()

	if orch.recorder != nil {
		t.Error("Expected no run history without cache")
	}
}

func TestBuildRejectsUnknownSettings(t *testing.T) {
	tests := map[string]func(*config.Config){
		"strategy":  func(c *config.Config) { c.Matching.Strategy = "random" },
		"policy":    func(c *config.Config) { c.Render.UnmatchedContent = "shuffle" },
		"generator": func(c *config.Config) { c.Generation.Provider = "carrier-pigeon" },
		"embedder":  func(c *config.Config) { c.Embedding.Provider = "magic" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := offlineConfig(t)
			mutate(cfg)
			if _, err := NewBuilder(cfg).Build(context.Background()); err == nil {
				t.Error("Expected build error")
			}
		})
	}
}

func TestBuildCollector(t *testing.T) {
	cfg := offlineConfig(t)

	collector, closeFn, err := NewBuilder(cfg).BuildCollector(context.Background())
	if err != nil {
		t.Fatalf("BuildCollector failed: %v", err)
	}
	if collector == nil {
		t.Fatal("Expected collector")
	}
	if err := closeFn(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
