// Package markup holds the element-tree helpers shared by the normalization passes.
// Documents are parsed once with goquery and manipulated as golang.org/x/net/html nodes.
package markup

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a document tree from src. The parser is tolerant and always
// synthesizes the html, head and body elements.
func Parse(src string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// Render serializes the whole document, doctype included.
func Render(doc *goquery.Document) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Nodes[0]); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

// Clone returns a deep copy of doc that shares no nodes with it.
func Clone(doc *goquery.Document) *goquery.Document {
	return goquery.NewDocumentFromNode(CloneNode(doc.Nodes[0]))
}

// CloneNode deep-copies n and its descendants. The copy is detached.
func CloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(CloneNode(child))
	}
	return c
}

// Element creates a detached element node.
func Element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// Attr is shorthand for an html.Attribute literal.
func Attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// GetAttr returns the value of the first attribute named key.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrValues returns the values of every attribute named key, in source order.
func AttrValues(n *html.Node, key string) []string {
	var vals []string
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			vals = append(vals, a.Val)
		}
	}
	return vals
}

// SetAttr leaves exactly one attribute named key, at the position of the first
// occurrence, or appended when absent.
func SetAttr(n *html.Node, key, val string) {
	out := n.Attr[:0]
	found := false
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			out = append(out, a)
			continue
		}
		if !found {
			a.Val = val
			out = append(out, a)
			found = true
		}
	}
	n.Attr = out
	if !found {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	}
}

// Classes returns the class set of n across all class attributes, first occurrence order.
func Classes(n *html.Node) []string {
	var classes []string
	for _, v := range AttrValues(n, "class") {
		for _, c := range strings.Fields(v) {
			if !slices.Contains(classes, c) {
				classes = append(classes, c)
			}
		}
	}
	return classes
}

// HasClass reports whether n carries every given class.
func HasClass(n *html.Node, classes ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	have := Classes(n)
	for _, c := range classes {
		if !slices.Contains(have, c) {
			return false
		}
	}
	return true
}

// AddClass adds classes to n with set semantics, collapsing duplicate class attributes.
func AddClass(n *html.Node, classes ...string) {
	have := Classes(n)
	for _, c := range classes {
		for _, f := range strings.Fields(c) {
			if !slices.Contains(have, f) {
				have = append(have, f)
			}
		}
	}
	SetAttr(n, "class", strings.Join(have, " "))
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// IsBlank reports whether n is a whitespace-only text node or a comment.
func IsBlank(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.TextNode:
		return strings.TrimSpace(n.Data) == ""
	}
	return false
}

// NextElement returns the next element sibling of n, skipping blank nodes.
// It returns nil when a non-blank text node intervenes.
func NextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
		if !IsBlank(s) {
			return nil
		}
	}
	return nil
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		child := n.FirstChild
		n.RemoveChild(child)
		parent.InsertBefore(child, n)
	}
	parent.RemoveChild(n)
}

// Children returns the child nodes of n as a slice, safe to mutate the tree while ranging.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// AppendAll detaches each node and appends it to parent.
func AppendAll(parent *html.Node, nodes ...*html.Node) {
	for _, n := range nodes {
		Detach(n)
		parent.AppendChild(n)
	}
}

// Descendants returns every element below n matching tag, in document order.
func Descendants(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if IsElement(c, tag) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
