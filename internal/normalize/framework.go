package normalize

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"healthpage/internal/markup"
)

const BootstrapURL = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css"

// Framework injects the Bootstrap stylesheet, wraps the body in a single container
// and adds the layout classes to images and headings.
type Framework struct{}

func (Framework) Name() string { return "framework" }

func (Framework) Apply(doc *goquery.Document) error {
	ensureStylesheet(doc)
	ensureContainer(body(doc).Get(0))

	doc.Find("img").AddClass("img-fluid")
	doc.Find("h1").AddClass("text-center", "mb-4")
	doc.Find("h2").AddClass("mt-4")
	return nil
}

func ensureStylesheet(doc *goquery.Document) {
	headNode := head(doc).Get(0)

	var link *html.Node
	existing := doc.Find(`link[href="` + BootstrapURL + `"]`).Nodes
	if len(existing) > 0 {
		link = existing[0]
		for _, extra := range existing {
			markup.Detach(extra)
		}
	} else {
		link = markup.Element("link",
			markup.Attr("href", BootstrapURL),
			markup.Attr("rel", "stylesheet"),
			markup.Attr("crossorigin", "anonymous"),
		)
	}
	headNode.InsertBefore(link, headNode.FirstChild)
}

func ensureContainer(bodyNode *html.Node) {
	if only := soleElementChild(bodyNode); only != nil && markup.IsElement(only, "div") && markup.HasClass(only, "container") {
		markup.AddClass(only, "mt-4")
		return
	}

	container := markup.Element("div", markup.Attr("class", "container mt-4"))
	markup.AppendAll(container, markup.Children(bodyNode)...)
	bodyNode.AppendChild(container)
}

// soleElementChild returns the only element child of n when everything else is blank.
func soleElementChild(n *html.Node) *html.Node {
	var only *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if only != nil {
				return nil
			}
			only = c
			continue
		}
		if !markup.IsBlank(c) {
			return nil
		}
	}
	return only
}
