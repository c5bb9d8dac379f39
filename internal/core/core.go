package core

import (
	"fmt"
	"strings"
	"time"
)

// Tip represents a short health recommendation fetched from a tip source.
type Tip struct {
	Title       string `json:"title" yaml:"title"`             // Headline of the recommendation
	Description string `json:"description" yaml:"description"` // Plain-text body, markup stripped
}

// QueryText returns the text used to embed the tip for image matching.
func (t Tip) QueryText() string {
	return fmt.Sprintf("%s. %s", t.Title, t.Description)
}

// ImageAsset represents a captioned image discovered at the start of a run.
type ImageAsset struct {
	Path    string `json:"path"`    // Unique identifier, file path as discovered
	Caption string `json:"caption"` // Caption produced by the captioning backend
}

// Pairing binds a tip to the single image chosen for it.
type Pairing struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
}

// Gender is the demographic attribute driving the design and palette tables.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts "male" or "female" in any letter case.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("unsupported gender %q: expected male or female", s)
	}
}

// Profile holds the validated demographic attributes of one request.
type Profile struct {
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

// RunRecord is the persisted summary of a single pipeline run.
type RunRecord struct {
	ID         string    `json:"id"`          // Run identifier (uuid)
	Age        int       `json:"age"`         // Requested age
	Gender     Gender    `json:"gender"`      // Requested gender
	Status     string    `json:"status"`      // Final pipeline status
	OutputPath string    `json:"output_path"` // Artifact path, empty when nothing was written
	Pairings   []Pairing `json:"pairings"`    // Pairings used for the prompt
	Warnings   []string  `json:"warnings"`    // Stage faults and degraded results
	CreatedAt  time.Time `json:"created_at"`  // When the run finished
}

// CacheStats represents statistics about the cache.
type CacheStats struct {
	CaptionCount   int       `json:"caption_count"`   // Number of cached captions
	EmbeddingCount int       `json:"embedding_count"` // Number of cached embedding vectors
	RunCount       int       `json:"run_count"`       // Number of recorded runs
	CacheSize      int64     `json:"cache_size"`      // Database size in bytes
	LastUpdated    time.Time `json:"last_updated"`    // Most recent write
}
