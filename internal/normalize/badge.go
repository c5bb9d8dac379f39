package normalize

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"healthpage/internal/markup"
)

const (
	AttributionURL  = "https://odphp.health.gov/myhealthfinder"
	AttributionLogo = "https://odphp.health.gov/themes/custom/healthfinder/images/MyHF.svg"

	attributionAttr = "data-attribution"
)

// Badge ensures the body holds exactly one MyHealthfinder attribution block.
// The first existing block stays where it is, later ones are removed, and a new
// block is appended to the body when none exists.
type Badge struct {
	ImageWidth int
}

func (Badge) Name() string { return "badge" }

func (b Badge) Apply(doc *goquery.Document) error {
	bodyNode := body(doc).Get(0)

	blocks := attributionBlocks(bodyNode)
	if len(blocks) == 0 {
		bodyNode.AppendChild(newBadge(b.ImageWidth))
		return nil
	}

	for _, extra := range blocks[1:] {
		markup.Detach(extra)
	}
	if _, ok := markup.GetAttr(blocks[0], attributionAttr); !ok {
		wrapAttribution(blocks[0])
	}
	return nil
}

// attributionBlocks finds elements marked with data-attribution and bare links to
// MyHealthfinder outside such elements, in document order.
func attributionBlocks(root *html.Node) []*html.Node {
	var blocks []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if isAttribution(c) {
				blocks = append(blocks, c)
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return blocks
}

func isAttribution(n *html.Node) bool {
	if _, ok := markup.GetAttr(n, attributionAttr); ok {
		return true
	}
	href, _ := markup.GetAttr(n, "href")
	return markup.IsElement(n, "a") && href == AttributionURL
}

func badgeWrapper() *html.Node {
	return markup.Element("div",
		markup.Attr("class", "text-center mt-5 pb-5"),
		markup.Attr(attributionAttr, "myhealthfinder"),
	)
}

func wrapAttribution(link *html.Node) {
	wrapper := badgeWrapper()
	link.Parent.InsertBefore(wrapper, link)
	markup.Detach(link)
	wrapper.AppendChild(link)
}

func newBadge(imageWidth int) *html.Node {
	img := markup.Element("img",
		markup.Attr("src", AttributionLogo),
		markup.Attr("alt", "MyHealthfinder"),
		markup.Attr("style", "max-width: 200px"),
	)
	sizeImage(img, imageWidth)

	link := markup.Element("a",
		markup.Attr("href", AttributionURL),
		markup.Attr("title", "MyHealthfinder"),
	)
	link.AppendChild(img)

	wrapper := badgeWrapper()
	wrapper.AppendChild(link)
	return wrapper
}
