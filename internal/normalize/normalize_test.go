package normalize

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"healthpage/internal/markup"
)

func TestPipelinePassOrder(t *testing.T) {
	want := []string{
		"script-stripper", "image-sizing", "badge", "framework",
		"attribute-repair", "theming", "card-wrapping",
	}
	if got := New(Options{}).Passes(); !slices.Equal(got, want) {
		t.Errorf("Expected passes %v, got %v", want, got)
	}
}

func TestPipelineRun(t *testing.T) {
	p := New(Options{PageTitle: "Health Tips for Seniors", PrimaryColor: "#4a90e2"})
	out, err := p.Run(context.Background(), generatedPage)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out.Faults) != 0 {
		t.Fatalf("Expected no faults, got %v", out.Faults)
	}

	doc := parse(t, out.Document)
	checks := []struct {
		selector string
		count    int
	}{
		{"script", 0},
		{`head > link[href="` + BootstrapURL + `"]`, 1},
		{"head > style[data-theme]", 1},
		{"style", 1},
		{"div.container", 1},
		{"div.card", 2},
		{"[data-attribution]", 1},
		{"h1", 1},
	}
	for _, c := range checks {
		if got := doc.Find(c.selector).Length(); got != c.count {
			t.Errorf("Expected %d %q, got %d", c.count, c.selector, got)
		}
	}

	for _, img := range doc.Find("img").Nodes {
		styles := markup.AttrValues(img, "style")
		if len(styles) != 1 {
			t.Errorf("Expected one style attribute per image, got %v", styles)
			continue
		}
		if w, _ := markup.Lookup(markup.ParseStyle(styles[0]), "width"); w != "300px" {
			t.Errorf("Expected width 300px, got %q", w)
		}
	}

	if !strings.Contains(doc.Find("style[data-theme]").Text(), "#4a90e2") {
		t.Error("Expected male palette in theme")
	}
	if strings.Contains(out.Document, "font-size: 20px") {
		t.Error("Expected the generated stylesheet removed")
	}
}

func TestPipelineIdempotent(t *testing.T) {
	for _, policy := range []UnmatchedPolicy{UnmatchedDrop, UnmatchedPreserve} {
		t.Run(string(policy), func(t *testing.T) {
			p := New(Options{PageTitle: "Health Tips for Seniors", Unmatched: policy})

			once, err := p.Run(context.Background(), generatedPage)
			if err != nil {
				t.Fatalf("First run failed: %v", err)
			}
			twice, err := p.Run(context.Background(), once.Document)
			if err != nil {
				t.Fatalf("Second run failed: %v", err)
			}
			if once.Document != twice.Document {
				t.Errorf("Pipeline is not idempotent\nonce:  %s\ntwice: %s", once.Document, twice.Document)
			}
		})
	}
}

func TestPipelineStageFaultKeepsPreviousDocument(t *testing.T) {
	src := `<html><head></head><body><h1>Hello</h1><p>No tips here</p></body></html>`

	out, err := New(Options{}).Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out.Faults) != 1 {
		t.Fatalf("Expected one fault, got %v", out.Faults)
	}
	fault := out.Faults[0]
	if fault.Pass != "card-wrapping" || !errors.Is(fault, ErrNoTipBlocks) {
		t.Errorf("Expected card-wrapping ErrNoTipBlocks fault, got %v", fault)
	}

	doc := parse(t, out.Document)
	if doc.Find("p").Text() != "No tips here" {
		t.Error("Expected content from before the failed pass")
	}
	if doc.Find("link").Length() != 1 || doc.Find("[data-attribution]").Length() != 1 {
		t.Error("Expected earlier passes to be applied")
	}
}

type failingPass struct{}

func (failingPass) Name() string { return "failing" }

func (failingPass) Apply(doc *goquery.Document) error {
	doc.Find("body").Remove()
	return errors.New("boom")
}

func TestApplyPassDiscardsPartialWork(t *testing.T) {
	out, err := NewWithPasses(failingPass{}, ScriptStripper{}).Run(context.Background(), `<body><p>x</p><script></script></body>`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.Document, "<p>x</p>") {
		t.Errorf("Expected the failed pass's mutations discarded, got %s", out.Document)
	}
	if strings.Contains(out.Document, "<script") {
		t.Error("Expected later passes to still run")
	}
}

func TestPipelineCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Run(ctx, generatedPage); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestParseUnmatchedPolicy(t *testing.T) {
	for in, want := range map[string]UnmatchedPolicy{"": UnmatchedDrop, "drop": UnmatchedDrop, "preserve": UnmatchedPreserve} {
		got, err := ParseUnmatchedPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseUnmatchedPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseUnmatchedPolicy("keep"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
