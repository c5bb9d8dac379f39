package normalize

import (
	"testing"

	"healthpage/internal/markup"
)

func TestImageSizingCoverage(t *testing.T) {
	src := `<body>
<img src="a.jpg">
<img src="b.jpg" style="border: 1px solid">
<img src="c.jpg" style="width: 50px; height: 20px">
<div><p><img src="d.jpg" STYLE="Width:10px"></p></div>
</body>`

	doc := apply(t, ImageSizing{Width: 300}, src)
	imgs := doc.Find("img").Nodes
	if len(imgs) != 4 {
		t.Fatalf("Expected 4 images, got %d", len(imgs))
	}
	for _, img := range imgs {
		styles := markup.AttrValues(img, "style")
		if len(styles) != 1 {
			t.Errorf("Expected exactly one style attribute, got %v", styles)
			continue
		}
		if w, _ := markup.Lookup(markup.ParseStyle(styles[0]), "width"); w != "300px" {
			t.Errorf("Expected width 300px, got %q in %q", w, styles[0])
		}
	}

	if got := doc.Find(`img[src="b.jpg"]`).AttrOr("style", ""); got != "border: 1px solid; width: 300px" {
		t.Errorf("Expected border kept, got %q", got)
	}
	if got := doc.Find(`img[src="c.jpg"]`).AttrOr("style", ""); got != "width: 300px; height: 20px" {
		t.Errorf("Expected width replaced in place, got %q", got)
	}
}

func TestImageSizingMergesDuplicateStyles(t *testing.T) {
	doc := parse(t, `<body><img src="a.jpg" style="width: 10px"></body>`)
	img := doc.Find("img").Get(0)
	img.Attr = append(img.Attr, markup.Attr("style", "color: red; width: 20px"))

	out, err := ApplyPass(ImageSizing{Width: 120}, doc)
	if err != nil {
		t.Fatalf("ApplyPass failed: %v", err)
	}
	got := markup.AttrValues(out.Find("img").Get(0), "style")
	if len(got) != 1 || got[0] != "width: 120px; color: red" {
		t.Errorf("Expected merged style 'width: 120px; color: red', got %v", got)
	}
}

func TestImageSizingDefaultWidth(t *testing.T) {
	doc := apply(t, ImageSizing{}, `<img src="a.jpg">`)
	if got := doc.Find("img").AttrOr("style", ""); got != "width: 300px" {
		t.Errorf("Expected default width, got %q", got)
	}
}

func TestImageSizingIdempotent(t *testing.T) {
	assertIdempotent(t, ImageSizing{Width: 300}, generatedPage)
}
