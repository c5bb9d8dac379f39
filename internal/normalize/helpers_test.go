package normalize

import (
	"testing"

	"github.com/PuerkitoBio/goquery"

	"healthpage/internal/markup"
)

func parse(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := markup.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func render(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	out, err := markup.Render(doc)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return out
}

// apply runs pass on src and returns the resulting document.
func apply(t *testing.T, pass Pass, src string) *goquery.Document {
	t.Helper()
	out, err := ApplyPass(pass, parse(t, src))
	if err != nil {
		t.Fatalf("%s failed: %v", pass.Name(), err)
	}
	return out
}

// assertIdempotent checks that a second application leaves the output unchanged.
func assertIdempotent(t *testing.T, pass Pass, src string) {
	t.Helper()
	once := render(t, apply(t, pass, src))
	twice := render(t, apply(t, pass, once))
	if once != twice {
		t.Errorf("%s is not idempotent\nonce:  %s\ntwice: %s", pass.Name(), once, twice)
	}
}

const generatedPage = `<!DOCTYPE html>
<html>
<head><title>Health Tips for Seniors</title><style>body { font-size: 20px; }</style></head>
<body>
<h1>Health Tips for Seniors</h1>
<div style='margin: 20px 0;'>
  <h2>Stretch</h2>
  <p>Stay flexible</p>
  <img src="img1.jpg" style="width: 300px" alt="Stretch">
</div>
<div style='margin: 20px 0;'>
  <h2>Walk</h2>
  <p>Walk every day</p>
  <p><img src="img2.jpg" alt="Walk"></p>
</div>
<script>alert('hello')</script>
<p>Talk to your doctor before starting.</p>
</body>
</html>
`
