package tips

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"healthpage/internal/core"
)

const sampleResponse = `{
  "Result": {
    "Resources": {
      "all": {
        "Resource": [
          {"MyHFTitle": "Get Active", "MyHFDescription": "<p>Aim for <strong>150 minutes</strong> a week.</p>"},
          {"MyHFTitle": "Eat Healthy", "MyHFDescription": "Fill half your plate with vegetables."},
          {"MyHFTitle": "", "MyHFDescription": "Untitled advice"}
        ]
      }
    }
  }
}`

func TestHealthFinderTips(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	hf := NewHealthFinder(server.URL, time.Second, 5, 42)
	tips, err := hf.Tips(context.Background(), core.Profile{Age: 65, Gender: core.GenderMale})
	if err != nil {
		t.Fatalf("Tips failed: %v", err)
	}

	if gotQuery != "age=65&sex=male" {
		t.Errorf("Expected query age=65&sex=male, got %q", gotQuery)
	}
	if len(tips) != 3 {
		t.Fatalf("Expected all 3 tips when fewer than the sample size, got %d", len(tips))
	}

	byTitle := make(map[string]string)
	for _, tip := range tips {
		byTitle[tip.Title] = tip.Description
	}
	if byTitle["Get Active"] != "Aim for 150 minutes a week." {
		t.Errorf("Expected markup stripped, got %q", byTitle["Get Active"])
	}
	if byTitle["No Title"] != "Untitled advice" {
		t.Errorf("Expected placeholder title for untitled resource, got %v", byTitle)
	}
}

func TestHealthFinderSampling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	p := core.Profile{Age: 30, Gender: core.GenderFemale}
	first, err := NewHealthFinder(server.URL, time.Second, 2, 7).Tips(context.Background(), p)
	if err != nil {
		t.Fatalf("Tips failed: %v", err)
	}
	second, err := NewHealthFinder(server.URL, time.Second, 2, 7).Tips(context.Background(), p)
	if err != nil {
		t.Fatalf("Tips failed: %v", err)
	}

	if len(first) != 2 {
		t.Fatalf("Expected sample of 2, got %d", len(first))
	}
	if first[0] != second[0] || first[1] != second[1] {
		t.Errorf("Expected the same seed to sample the same tips: %v vs %v", first, second)
	}
	if first[0].Title == first[1].Title {
		t.Error("Expected sampling without replacement")
	}
}

func TestHealthFinderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, "", nil},
		{"bad json", http.StatusOK, "{not json", nil},
		{"missing resources", http.StatusOK, `{"Result": {"Error": "False"}}`, ErrNoResources},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHealthFinder(server.URL, time.Second, 5, 1).Tips(context.Background(), core.Profile{Age: 40, Gender: core.GenderMale})
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHealthFinderEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Result": {"Resources": {"all": {"Resource": []}}}}`))
	}))
	defer server.Close()

	tips, err := NewHealthFinder(server.URL, time.Second, 5, 1).Tips(context.Background(), core.Profile{Age: 40, Gender: core.GenderMale})
	if err != nil {
		t.Fatalf("Expected empty list without error, got %v", err)
	}
	if len(tips) != 0 {
		t.Errorf("Expected no tips, got %v", tips)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.yaml")
	content := `
- title: Stretch
  description: Stay flexible
- title: Bone Density
  description: "<em>Ask</em> about screening"
  min_age: 60
- title: Prenatal Care
  description: See your provider
  gender: female
  max_age: 45
- title: ""
  description: skipped
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write tip file: %v", err)
	}

	src := NewFileSource(path, 10, 1)

	senior, err := src.Tips(context.Background(), core.Profile{Age: 65, Gender: core.GenderMale})
	if err != nil {
		t.Fatalf("Tips failed: %v", err)
	}
	if titles := titleSet(senior); len(titles) != 2 || !titles["Stretch"] || !titles["Bone Density"] {
		t.Errorf("Unexpected tips for senior male: %v", senior)
	}
	for _, tip := range senior {
		if tip.Title == "Bone Density" && tip.Description != "Ask about screening" {
			t.Errorf("Expected markup stripped, got %q", tip.Description)
		}
	}

	young, err := src.Tips(context.Background(), core.Profile{Age: 30, Gender: core.GenderFemale})
	if err != nil {
		t.Fatalf("Tips failed: %v", err)
	}
	if titles := titleSet(young); len(titles) != 2 || !titles["Prenatal Care"] {
		t.Errorf("Unexpected tips for young female: %v", young)
	}
}

func TestFileSourceJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.json")
	if err := os.WriteFile(path, []byte(`[{"title": "Walk", "description": "Daily"}]`), 0644); err != nil {
		t.Fatalf("Failed to write tip file: %v", err)
	}

	tips, err := NewFileSource(path, 5, 1).Tips(context.Background(), core.Profile{Age: 20, Gender: core.GenderMale})
	if err != nil {
		t.Fatalf("Tips failed: %v", err)
	}
	if len(tips) != 1 || tips[0] != (core.Tip{Title: "Walk", Description: "Daily"}) {
		t.Errorf("Unexpected tips %v", tips)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml"), 5, 1).Tips(context.Background(), core.Profile{})
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestStripHTML(t *testing.T) {
	tests := map[string]string{
		"plain   text\n here":                "plain text here",
		"<p>Hello <b>world</b></p>":          "Hello world",
		"<ul><li>One</li> <li>Two</li></ul>": "One Two",
		"":                                   "",
	}
	for in, want := range tests {
		if got := StripHTML(in); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func titleSet(tips []core.Tip) map[string]bool {
	set := make(map[string]bool)
	for _, tip := range tips {
		set[tip.Title] = true
	}
	return set
}
