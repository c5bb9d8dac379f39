package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"healthpage/internal/markup"
)

// AttributeRepair merges duplicate style and class attributes, unwraps containers
// nested inside another container and drops every internal stylesheet.
type AttributeRepair struct{}

func (AttributeRepair) Name() string { return "attribute-repair" }

func (AttributeRepair) Apply(doc *goquery.Document) error {
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		mergeDuplicateAttrs(s.Get(0))
	})

	var nested []*html.Node
	doc.Find("div.container").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(".container").Length() > 0 {
			nested = append(nested, s.Get(0))
		}
	})
	for _, n := range nested {
		markup.Unwrap(n)
	}

	doc.Find("style").Remove()
	return nil
}

func mergeDuplicateAttrs(n *html.Node) {
	if styles := markup.AttrValues(n, "style"); len(styles) > 1 {
		markup.SetAttr(n, "style", markup.FormatStyle(markup.MergeStyles(styles...)))
	}
	if len(markup.AttrValues(n, "class")) > 1 {
		markup.SetAttr(n, "class", strings.Join(markup.Classes(n), " "))
	}
}
