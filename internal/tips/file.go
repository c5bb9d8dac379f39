package tips

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"healthpage/internal/core"
)

// fileTip is one entry of a tip file. Age and gender bounds are optional filters.
type fileTip struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	MinAge      *int   `yaml:"min_age"`
	MaxAge      *int   `yaml:"max_age"`
	Gender      string `yaml:"gender"`
}

func (t fileTip) applies(p core.Profile) bool {
	if t.MinAge != nil && p.Age < *t.MinAge {
		return false
	}
	if t.MaxAge != nil && p.Age > *t.MaxAge {
		return false
	}
	return t.Gender == "" || strings.EqualFold(t.Gender, string(p.Gender))
}

// FileSource reads tips from a YAML or JSON file.
type FileSource struct {
	path    string
	sampler *sampler
}

// NewFileSource creates a source backed by path.
func NewFileSource(path string, sampleSize int, seed int64) *FileSource {
	return &FileSource{path: path, sampler: newSampler(sampleSize, seed)}
}

// Tips loads the file on every call so edits apply without a restart.
func (f *FileSource) Tips(_ context.Context, p core.Profile) ([]core.Tip, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tip file %s: %w", f.path, err)
	}

	var entries []fileTip
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse tip file %s: %w", f.path, err)
	}

	var matching []core.Tip
	for _, e := range entries {
		if strings.TrimSpace(e.Title) == "" || !e.applies(p) {
			continue
		}
		matching = append(matching, core.Tip{Title: e.Title, Description: StripHTML(e.Description)})
	}
	return f.sampler.sample(matching), nil
}
