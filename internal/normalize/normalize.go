// Package normalize turns generator markup into the final page through a fixed
// sequence of structural passes over a parsed element tree.
//
// Each pass receives its own copy of the tree. When a pass fails the pipeline logs a
// warning, discards that copy and continues with the tree from before the pass, so a
// fault degrades the page instead of aborting the run. Passes are idempotent on their
// own output and the pipeline as a whole is idempotent on its final document.
package normalize

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"healthpage/internal/logger"
	"healthpage/internal/markup"
)

const (
	DefaultImageWidth   = 300
	DefaultPrimaryColor = "#4a90e2"
	DefaultPageTitle    = "Health Tips"
)

// ErrNoTipBlocks is returned by card wrapping when no heading, paragraph, image triple exists.
var ErrNoTipBlocks = errors.New("no tip blocks matched")

// Pass is one structural transformation. Apply mutates doc in place.
type Pass interface {
	Name() string
	Apply(doc *goquery.Document) error
}

// UnmatchedPolicy controls what card wrapping does with body content outside tip triples.
type UnmatchedPolicy string

const (
	UnmatchedDrop     UnmatchedPolicy = "drop"
	UnmatchedPreserve UnmatchedPolicy = "preserve"
)

// ParseUnmatchedPolicy accepts "drop" or "preserve"; empty means drop.
func ParseUnmatchedPolicy(s string) (UnmatchedPolicy, error) {
	switch UnmatchedPolicy(s) {
	case "", UnmatchedDrop:
		return UnmatchedDrop, nil
	case UnmatchedPreserve:
		return UnmatchedPreserve, nil
	default:
		return "", fmt.Errorf("unsupported unmatched content policy %q", s)
	}
}

// Options configure the pass sequence built by New.
type Options struct {
	ImageWidth   int
	PageTitle    string
	PrimaryColor string
	Unmatched    UnmatchedPolicy
}

func (o Options) withDefaults() Options {
	if o.ImageWidth <= 0 {
		o.ImageWidth = DefaultImageWidth
	}
	if o.PrimaryColor == "" {
		o.PrimaryColor = DefaultPrimaryColor
	}
	if o.Unmatched == "" {
		o.Unmatched = UnmatchedDrop
	}
	return o
}

// Fault records a pass that failed and was skipped.
type Fault struct {
	Pass string
	Err  error
}

func (f Fault) Error() string {
	return fmt.Sprintf("normalization pass %s failed: %v", f.Pass, f.Err)
}

func (f Fault) Unwrap() error { return f.Err }

// Output is the serialized document plus any skipped passes.
type Output struct {
	Document string
	Faults   []Fault
}

// Pipeline runs passes in a fixed order.
type Pipeline struct {
	passes []Pass
}

// New builds the standard seven-pass pipeline.
func New(opts Options) *Pipeline {
	opts = opts.withDefaults()
	return &Pipeline{passes: []Pass{
		ScriptStripper{},
		ImageSizing{Width: opts.ImageWidth},
		Badge{ImageWidth: opts.ImageWidth},
		Framework{},
		AttributeRepair{},
		Theming{PrimaryColor: opts.PrimaryColor},
		CardWrapping{Title: opts.PageTitle, Unmatched: opts.Unmatched},
	}}
}

// NewWithPasses builds a pipeline from an explicit pass list.
func NewWithPasses(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Passes returns the pass names in execution order.
func (p *Pipeline) Passes() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name()
	}
	return names
}

// Run parses src once, applies every pass and serializes the result.
// Only parse, render and context errors are returned; pass failures become Faults.
func (p *Pipeline) Run(ctx context.Context, src string) (*Output, error) {
	doc, err := markup.Parse(src)
	if err != nil {
		return nil, err
	}

	out := &Output{}
	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := ApplyPass(pass, doc)
		if err != nil {
			logger.Warn("Normalization pass failed, keeping previous document",
				"pass", pass.Name(), "error", err.Error())
			out.Faults = append(out.Faults, Fault{Pass: pass.Name(), Err: err})
			continue
		}
		logger.Debug("Normalization pass applied", "pass", pass.Name())
		doc = next
	}

	rendered, err := markup.Render(doc)
	if err != nil {
		return nil, err
	}
	out.Document = rendered
	return out, nil
}

// ApplyPass runs pass on a copy of doc. On failure the original doc is returned
// unchanged together with the error.
func ApplyPass(pass Pass, doc *goquery.Document) (*goquery.Document, error) {
	work := markup.Clone(doc)
	if err := pass.Apply(work); err != nil {
		return doc, err
	}
	return work, nil
}

func body(doc *goquery.Document) *goquery.Selection {
	return doc.Find("body").First()
}

func head(doc *goquery.Document) *goquery.Selection {
	return doc.Find("head").First()
}
