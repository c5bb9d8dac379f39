// Package matcher pairs tips with captioned images by semantic similarity.
//
// The default strategy is greedy and first-come: tips are processed in input order and each
// claims its best-ranked image that no earlier tip has claimed. This trades global optimality
// for simplicity and determinism. StrategyOptimal is a separate, opt-in mode that maximizes
// the total similarity of the assignment instead.
package matcher

import (
	"context"
	"fmt"

	"healthpage/internal/core"
	"healthpage/internal/logger"
	"healthpage/internal/similarity"
)

// Strategy selects the assignment algorithm.
type Strategy string

const (
	StrategyGreedy  Strategy = "greedy"
	StrategyOptimal Strategy = "optimal"
)

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyGreedy:
		return StrategyGreedy, nil
	case StrategyOptimal:
		return StrategyOptimal, nil
	default:
		return "", fmt.Errorf("unknown matching strategy %q", s)
	}
}

// Result is the outcome of a match. Tips that could not be given an image are listed in
// Unmatched rather than silently dropped.
type Result struct {
	Pairings  []core.Pairing
	Unmatched []core.Tip
}

// Matcher assigns images to tips.
type Matcher struct {
	index    *similarity.Index
	strategy Strategy
}

// New creates a Matcher using the given embedder and strategy.
func New(embedder similarity.Embedder, strategy Strategy) *Matcher {
	if strategy == "" {
		strategy = StrategyGreedy
	}
	return &Matcher{
		index:    similarity.NewIndex(embedder),
		strategy: strategy,
	}
}

// Match pairs each tip with at most one image; no image is used twice.
// An empty image set yields an empty result without calling the embedder.
func (m *Matcher) Match(ctx context.Context, tips []core.Tip, images []core.ImageAsset) (Result, error) {
	if len(tips) == 0 {
		return Result{}, nil
	}
	if len(images) == 0 {
		logger.Warn("No images available for matching", "tips", len(tips))
		return Result{Unmatched: append([]core.Tip(nil), tips...)}, nil
	}

	queries := make([]string, len(tips))
	for i, tip := range tips {
		queries[i] = tip.QueryText()
	}
	captions := make([]string, len(images))
	for i, img := range images {
		captions[i] = img.Caption
	}

	matrix, err := m.index.Compare(ctx, queries, captions)
	if err != nil {
		return Result{}, fmt.Errorf("failed to compare tips with captions: %w", err)
	}

	var assignment []int
	switch m.strategy {
	case StrategyOptimal:
		assignment = AssignOptimal(matrix)
	default:
		assignment = AssignGreedy(matrix)
	}

	res := build(tips, images, assignment)
	for _, tip := range res.Unmatched {
		logger.Warn("Tip left without an image", "title", tip.Title, "strategy", string(m.strategy))
	}
	logger.Debug("Matched tips to images",
		"strategy", string(m.strategy),
		"pairings", len(res.Pairings),
		"unmatched", len(res.Unmatched),
	)
	return res, nil
}

// build turns an assignment (image index per tip, -1 for none) into a Result.
// Images are claimed by path so duplicate paths in the input can never be paired twice.
func build(tips []core.Tip, images []core.ImageAsset, assignment []int) Result {
	var res Result
	claimed := make(map[string]bool, len(images))
	for i, tip := range tips {
		j := -1
		if i < len(assignment) {
			j = assignment[i]
		}
		if j < 0 || j >= len(images) || claimed[images[j].Path] {
			res.Unmatched = append(res.Unmatched, tip)
			continue
		}
		claimed[images[j].Path] = true
		res.Pairings = append(res.Pairings, core.Pairing{
			Title:       tip.Title,
			Description: tip.Description,
			ImagePath:   images[j].Path,
		})
	}
	return res
}

// AssignGreedy walks tips in order and gives each the first unclaimed candidate of its ranking.
func AssignGreedy(m similarity.Matrix) []int {
	assignment := make([]int, len(m))
	used := make(map[int]bool)
	for i := range m {
		assignment[i] = -1
		for _, j := range m.Ranking(i) {
			if !used[j] {
				used[j] = true
				assignment[i] = j
				break
			}
		}
	}
	return assignment
}
