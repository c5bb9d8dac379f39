package normalize

import "github.com/PuerkitoBio/goquery"

// ScriptStripper removes every script element.
type ScriptStripper struct{}

func (ScriptStripper) Name() string { return "script-stripper" }

func (ScriptStripper) Apply(doc *goquery.Document) error {
	doc.Find("script").Remove()
	return nil
}
