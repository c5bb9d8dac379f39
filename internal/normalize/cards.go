package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"healthpage/internal/markup"
)

const (
	cardClass      = "card mb-4 p-3 shadow-sm"
	cardStyle      = "width: 100%; max-width: 600px"
	cardImageClass = "img-fluid rounded-3 mx-auto d-block"
	layoutClass    = "d-flex flex-column align-items-center"
	containerClass = "container mt-4"
	unstructured   = "unstructured"
)

// tipBlock is one heading, paragraph, image sequence found in the body.
type tipBlock struct {
	heading *html.Node
	desc    *html.Node
	image   *html.Node // the img element itself
	holder  *html.Node // image, or the wrapper that holds it
}

// CardWrapping rebuilds the body as a title heading followed by one card per tip
// block and the attribution block. Content outside tip blocks is dropped or, with
// UnmatchedPreserve, moved into a section.unstructured placed before the attribution.
type CardWrapping struct {
	Title     string
	Unmatched UnmatchedPolicy
}

func (CardWrapping) Name() string { return "card-wrapping" }

func (c CardWrapping) Apply(doc *goquery.Document) error {
	bodyNode := body(doc).Get(0)

	var badge *html.Node
	for i, block := range attributionBlocks(bodyNode) {
		markup.Detach(block)
		if i == 0 {
			badge = block
		}
	}
	if badge != nil {
		if _, ok := markup.GetAttr(badge, attributionAttr); !ok {
			wrapper := badgeWrapper()
			wrapper.AppendChild(badge)
			badge = wrapper
		}
	}

	blocks := findTipBlocks(bodyNode)
	if len(blocks) == 0 {
		return ErrNoTipBlocks
	}

	title := c.Title
	if title == "" {
		title = strings.TrimSpace(doc.Find("body h1").First().Text())
	}
	if title == "" {
		title = DefaultPageTitle
	}

	layout := markup.Element("div", markup.Attr("class", layoutClass))
	for _, b := range blocks {
		layout.AppendChild(buildCard(b))
	}

	if c.Unmatched == UnmatchedPreserve {
		if section := leftoverSection(bodyNode, blocks); section != nil {
			layout.AppendChild(section)
		}
	}
	if badge != nil {
		layout.AppendChild(badge)
	}

	heading := markup.Element("h1", markup.Attr("class", "text-center mb-4"))
	heading.AppendChild(markup.Text(title))

	container := markup.Element("div", markup.Attr("class", containerClass))
	container.AppendChild(heading)
	container.AppendChild(layout)

	for _, child := range markup.Children(bodyNode) {
		bodyNode.RemoveChild(child)
	}
	bodyNode.AppendChild(container)
	return nil
}

// findTipBlocks scans h2 elements in document order for an adjacent p and image.
func findTipBlocks(root *html.Node) []tipBlock {
	var blocks []tipBlock
	used := make(map[*html.Node]bool)

	for _, h2 := range markup.Descendants(root, "h2") {
		if insideUsed(h2, used) {
			continue
		}
		desc := markup.NextElement(h2)
		if !markup.IsElement(desc, "p") {
			continue
		}
		holder := markup.NextElement(desc)
		img := imageOf(holder)
		if img == nil {
			continue
		}
		blocks = append(blocks, tipBlock{heading: h2, desc: desc, image: img, holder: holder})
		used[h2], used[desc], used[holder] = true, true, true
	}
	return blocks
}

func insideUsed(n *html.Node, used map[*html.Node]bool) bool {
	for p := n; p != nil; p = p.Parent {
		if used[p] {
			return true
		}
	}
	return false
}

// imageOf returns the image an element stands for: the element itself when it is an
// img, or the single img inside a p, div, figure or a wrapper.
func imageOf(n *html.Node) *html.Node {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	switch n.Data {
	case "img":
		return n
	case "p", "div", "figure", "a":
		if imgs := markup.Descendants(n, "img"); len(imgs) == 1 {
			return imgs[0]
		}
	}
	return nil
}

func buildCard(b tipBlock) *html.Node {
	card := markup.Element("div",
		markup.Attr("class", cardClass),
		markup.Attr("style", cardStyle),
	)

	title := markup.Element("h2", markup.Attr("class", "card-title"))
	appendTrimmed(title, b.heading)

	text := markup.Element("p", markup.Attr("class", "card-text"))
	appendTrimmed(text, b.desc)

	img := markup.CloneNode(b.image)
	extra := markup.Classes(img)
	markup.SetAttr(img, "class", cardImageClass)
	markup.AddClass(img, extra...)

	card.AppendChild(title)
	card.AppendChild(text)
	card.AppendChild(img)
	return card
}

// appendTrimmed copies the children of src into dst, trimming outer whitespace.
func appendTrimmed(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		dst.AppendChild(markup.CloneNode(c))
	}
	if first := dst.FirstChild; first != nil && first.Type == html.TextNode {
		first.Data = strings.TrimLeft(first.Data, " \t\r\n")
	}
	if last := dst.LastChild; last != nil && last.Type == html.TextNode {
		last.Data = strings.TrimRight(last.Data, " \t\r\n")
	}
}

// leftoverSection collects body content that is not part of a tip block or the page
// heading. Wrappers produced by earlier runs are flattened and empty elements pruned,
// so rebuilding an already wrapped page yields the same section.
func leftoverSection(bodyNode *html.Node, blocks []tipBlock) *html.Node {
	for _, b := range blocks {
		markup.Detach(b.heading)
		markup.Detach(b.desc)
		markup.Detach(b.holder)
	}
	if h1 := markup.Descendants(bodyNode, "h1"); len(h1) > 0 {
		markup.Detach(h1[0])
	}

	leftovers := flattenLeftovers(markup.Children(bodyNode))
	if len(leftovers) == 0 {
		return nil
	}

	section := markup.Element("section", markup.Attr("class", unstructured))
	markup.AppendAll(section, leftovers...)
	return section
}

func flattenLeftovers(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if markup.IsBlank(n) {
			continue
		}
		if isGeneratedWrapper(n) {
			out = append(out, flattenLeftovers(markup.Children(n))...)
			continue
		}
		if n.Type == html.ElementNode && prune(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isGeneratedWrapper(n *html.Node) bool {
	switch {
	case markup.IsElement(n, "div") && markup.HasClass(n, "container"):
		return true
	case markup.IsElement(n, "div") && markup.HasClass(n, strings.Fields(layoutClass)...):
		return true
	case markup.IsElement(n, "div") && markup.HasClass(n, "card"):
		return true
	case markup.IsElement(n, "section") && markup.HasClass(n, unstructured):
		return true
	}
	return false
}

var contentElements = map[string]bool{
	"img": true, "br": true, "hr": true, "input": true, "iframe": true, "video": true,
	"audio": true, "svg": true, "picture": true, "embed": true, "object": true,
	"canvas": true, "source": true, "track": true, "wbr": true,
}

// prune removes empty descendants of n and reports whether n itself is empty.
func prune(n *html.Node) bool {
	if contentElements[n.Data] {
		return false
	}
	empty := true
	for _, c := range markup.Children(n) {
		switch {
		case c.Type == html.ElementNode:
			if prune(c) {
				n.RemoveChild(c)
				continue
			}
			empty = false
		case !markup.IsBlank(c):
			empty = false
		}
	}
	return empty
}
