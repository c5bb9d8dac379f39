package pipeline

import (
	"context"

	"healthpage/internal/core"
	"healthpage/internal/matcher"
)

// TipSource supplies tips for a profile
type TipSource interface {
	Tips(ctx context.Context, p core.Profile) ([]core.Tip, error)
}

// ImageCaptioner captions every image in a directory
type ImageCaptioner interface {
	// Collect returns a mapping of image path to caption.
	// Unreadable or failed files are skipped; only a directory-level failure is an error.
	Collect(ctx context.Context, dir string) (map[string]string, error)
}

// TipMatcher pairs tips with captioned images
type TipMatcher interface {
	Match(ctx context.Context, tips []core.Tip, images []core.ImageAsset) (matcher.Result, error)
}

// PageGenerator writes the raw page from a prompt
type PageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RunRecorder persists run summaries
type RunRecorder interface {
	RecordRun(run core.RunRecord) error
}
