package handlers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"healthpage/internal/config"
	"healthpage/internal/core"
	"healthpage/internal/pipeline"
)

const rawPage = "Sure! Here it is:\n<!DOCTYPE html><html><head><title>x</title></head><body>" +
	"<h2>Stretch</h2><p>Stay flexible</p><img src=\"img1.jpg\"></body></html>"

func setupConfig(t *testing.T) string {
	t.Helper()
	config.Reset()
	t.Cleanup(config.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "healthpage.yaml")
	content := "cache:\n  directory: " + filepath.Join(dir, "cache") + "\n" +
		"render:\n  output_file: " + filepath.Join(dir, "page.html") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return dir
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "healthpage.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	dir := setupConfig(t)
	t.Setenv("GEMINI_API_KEY", "")

	raw := filepath.Join(dir, "raw.html")
	if err := os.WriteFile(raw, []byte(rawPage), 0644); err != nil {
		t.Fatalf("Failed to write raw file: %v", err)
	}

	out, err := execute(t, dir, "normalize", raw, "--age", "65", "--gender", "male")
	if err != nil {
		t.Fatalf("normalize failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Page generated successfully.") {
		t.Errorf("Expected success message, got:\n%s", out)
	}

	page, err := os.ReadFile(filepath.Join(dir, "page.html"))
	if err != nil {
		t.Fatalf("Expected page written: %v", err)
	}
	if !strings.Contains(string(page), "Health Tips for Seniors") {
		t.Error("Expected senior title in page")
	}
}

func TestNormalizeCommandRejectsProse(t *testing.T) {
	dir := setupConfig(t)

	raw := filepath.Join(dir, "raw.txt")
	if err := os.WriteFile(raw, []byte("no markup here"), 0644); err != nil {
		t.Fatalf("Failed to write raw file: %v", err)
	}

	if _, err := execute(t, dir, "normalize", raw, "--age", "30", "--gender", "female"); err == nil {
		t.Error("Expected gate failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "page.html")); !os.IsNotExist(err) {
		t.Error("Expected no page written")
	}
}

func TestCacheStatsAndRuns(t *testing.T) {
	dir := setupConfig(t)

	out, err := execute(t, dir, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats failed: %v", err)
	}
	if !strings.Contains(out, "Captions cached: 0") {
		t.Errorf("Expected empty stats, got:\n%s", out)
	}

	config.Reset()
	out, err = execute(t, dir, "runs")
	if err != nil {
		t.Fatalf("runs failed: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Errorf("Expected no runs, got:\n%s", out)
	}
}

func TestFormatResult(t *testing.T) {
	res := &pipeline.Result{
		RunID:      "abc",
		Status:     pipeline.StatusSuccess,
		Message:    pipeline.MessageSuccess,
		Profile:    core.Profile{Age: 65, Gender: core.GenderMale},
		Pairings:   []core.Pairing{{Title: "Stretch", ImagePath: "img1.jpg"}},
		Unmatched:  []core.Tip{{Title: "Hydrate"}},
		OutputPath: "prototype-final.html",
		Warnings:   []string{"normalization pass badge failed: boom"},
		Preview:    "<iframe></iframe>",
	}

	out := formatResult(res, false)
	for _, want := range []string{"Page generated successfully.", "Stretch", "img1.jpg", "Hydrate", "prototype-final.html", "badge failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
	if strings.Contains(out, "<iframe>") {
		t.Error("Expected preview hidden without --preview")
	}
	if !strings.Contains(formatResult(res, true), "<iframe></iframe>") {
		t.Error("Expected preview with --preview")
	}
}
