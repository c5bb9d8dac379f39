// Package tips fetches short health recommendations for a demographic profile.
package tips

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"healthpage/internal/core"
)

// DefaultSampleSize is how many tips a run uses.
const DefaultSampleSize = 5

// ErrNoResources is returned when a tip response carries no resource list at all.
var ErrNoResources = errors.New("no resources in tip response")

// Source supplies tips for a profile.
type Source interface {
	Tips(ctx context.Context, p core.Profile) ([]core.Tip, error)
}

// sampler draws a random subset without replacement. Safe for concurrent use.
type sampler struct {
	mu   sync.Mutex
	rng  *rand.Rand
	size int
}

// newSampler seeds from the clock when seed is zero.
func newSampler(size int, seed int64) *sampler {
	if size <= 0 {
		size = DefaultSampleSize
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &sampler{rng: rand.New(rand.NewSource(seed)), size: size}
}

func (s *sampler) sample(tips []core.Tip) []core.Tip {
	k := min(s.size, len(tips))

	s.mu.Lock()
	perm := s.rng.Perm(len(tips))
	s.mu.Unlock()

	out := make([]core.Tip, 0, k)
	for _, i := range perm[:k] {
		out = append(out, tips[i])
	}
	return out
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
