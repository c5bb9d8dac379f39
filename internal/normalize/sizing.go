package normalize

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"healthpage/internal/markup"
)

// ImageSizing gives every image exactly one style attribute with a fixed width.
// Other declarations survive; duplicate style attributes are merged first.
type ImageSizing struct {
	Width int
}

func (ImageSizing) Name() string { return "image-sizing" }

func (s ImageSizing) Apply(doc *goquery.Document) error {
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		sizeImage(img.Get(0), s.Width)
	})
	return nil
}

func sizeImage(n *html.Node, width int) {
	if width <= 0 {
		width = DefaultImageWidth
	}
	decls := markup.MergeStyles(markup.AttrValues(n, "style")...)
	decls = markup.SetDeclaration(decls, "width", fmt.Sprintf("%dpx", width))
	markup.SetAttr(n, "style", markup.FormatStyle(decls))
}
