// internal/browser/loader/loader.go
package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// The loader turns raw HTML into the inputs the core consumes: a flattened
// element list (document order, parent indices), the inline stylesheet
// texts, and the opaque title/body-text strings. Fetching linked stylesheets
// belongs to the host's network pipeline and is deliberately absent here.

// Document is the loader's output for one page.
type Document struct {
	Elements []FlatElement
	Styles   []string
	Title    string
	BodyText string
}

// FlatElement is one element of the flattened list. Parent is an index into
// Elements, or -1 for the root.
type FlatElement struct {
	Tag    string
	ID     string
	Class  string
	Parent int
	Attrs  [][2]string
	Text   string
}

// Load parses HTML and produces the flattened document.
func Load(r io.Reader) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc := &Document{
		Title:    strings.TrimSpace(gq.Find("title").First().Text()),
		BodyText: gq.Find("body").First().Text(),
	}
	gq.Find("style").Each(func(_ int, sel *goquery.Selection) {
		if text := sel.Text(); strings.TrimSpace(text) != "" {
			doc.Styles = append(doc.Styles, text)
		}
	})

	root := gq.Get(0)
	if root != nil {
		flatten(root, -1, doc)
	}
	return doc, nil
}

// flatten walks element nodes depth-first in document order, recording the
// parent index of each.
func flatten(n *html.Node, parent int, doc *Document) {
	idx := parent
	if n.Type == html.ElementNode {
		el := FlatElement{
			Tag:    strings.ToLower(n.Data),
			Parent: parent,
			Text:   innerText(n),
		}
		for _, attr := range n.Attr {
			el.Attrs = append(el.Attrs, [2]string{attr.Key, attr.Val})
			switch attr.Key {
			case "id":
				el.ID = attr.Val
			case "class":
				el.Class = attr.Val
			}
		}
		doc.Elements = append(doc.Elements, el)
		idx = len(doc.Elements) - 1
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(c, idx, doc)
	}
}

// innerText concatenates the text of a node's descendants.
func innerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
