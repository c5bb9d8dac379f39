package normalize

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"healthpage/internal/markup"
)

const themeCSS = `
body {
  background-color: #f8f9fa;
}
h1 {
  background-color: %s;
  color: white;
  padding: 20px;
  border-radius: 8px;
}
`

// Theming keeps one palette style block as the last child of head.
type Theming struct {
	PrimaryColor string
}

func (Theming) Name() string { return "theming" }

func (t Theming) Apply(doc *goquery.Document) error {
	color := t.PrimaryColor
	if color == "" {
		color = DefaultPrimaryColor
	}

	doc.Find("style[data-theme]").Remove()

	style := markup.Element("style", markup.Attr("data-theme", "palette"))
	style.AppendChild(markup.Text(fmt.Sprintf(themeCSS, color)))
	head(doc).Get(0).AppendChild(style)
	return nil
}
