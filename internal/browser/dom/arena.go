// internal/browser/dom/arena.go
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr is a single name/value attribute pair. Order is preserved as parsed.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the flattened document. The tree shape is encoded by
// Parent, an index into the owning Arena (-1 marks the root). Elements are
// index-stable once appended; only attribute values mutate in place.
type Element struct {
	Tag    string
	ID     string
	Class  string
	Parent int
	Attrs  []Attr
	Text   string
	Markup string
}

// Arena is the flat, append-only element list for one loaded document.
// All traversal (ancestor walks, sibling scans) is index lookup, never
// pointer chasing.
type Arena struct {
	elems []*Element
}

func NewArena() *Arena {
	return &Arena{}
}

// Append adds an element and returns its index.
func (a *Arena) Append(el *Element) int {
	a.elems = append(a.elems, el)
	return len(a.elems) - 1
}

func (a *Arena) Len() int {
	return len(a.elems)
}

// At returns the element at idx, or nil when idx is out of range.
func (a *Arena) At(idx int) *Element {
	if idx < 0 || idx >= len(a.elems) {
		return nil
	}
	return a.elems[idx]
}

// GetAttribute returns the attribute value and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttribute updates an attribute in place, appending it when absent. The
// derived ID/Class fields are kept consistent with the backing list.
func (e *Element) SetAttribute(name, value string) {
	switch name {
	case "id":
		e.ID = value
	case "class":
		e.Class = value
	}
	for i, attr := range e.Attrs {
		if attr.Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttribute deletes an attribute if present.
func (e *Element) RemoveAttribute(name string) {
	switch name {
	case "id":
		e.ID = ""
	case "class":
		e.Class = ""
	}
	for i, attr := range e.Attrs {
		if attr.Name == name {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// InnerHTML returns the markup last assigned via SetInnerHTML. Elements
// start with no stored markup, in which case the text content stands in.
func (e *Element) InnerHTML() string {
	if e.Markup != "" {
		return e.Markup
	}
	return e.Text
}

// SetInnerHTML stores markup and re-derives the element's text content from
// it. The flat arena has no child slots to re-populate, so the markup is
// kept verbatim for later reads.
func (e *Element) SetInnerHTML(markup string) {
	e.Markup = markup
	e.Text = markupText(markup)
}

// markupText extracts the concatenated text nodes of an HTML fragment.
func markupText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
		}
	}
	return b.String()
}

// HasClass reports whether name appears in the space-separated class list.
func (e *Element) HasClass(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range strings.Fields(e.Class) {
		if c == name {
			return true
		}
	}
	return false
}

// siblings returns the indices of all elements sharing idx's parent, in
// arena (document) order. The target itself is included.
func (a *Arena) siblings(idx int) []int {
	el := a.At(idx)
	if el == nil {
		return nil
	}
	var out []int
	for i, e := range a.elems {
		if e.Parent == el.Parent {
			out = append(out, i)
		}
	}
	return out
}

func (a *Arena) isFirstChild(idx int) bool {
	sibs := a.siblings(idx)
	return len(sibs) > 0 && sibs[0] == idx
}

func (a *Arena) isLastChild(idx int) bool {
	sibs := a.siblings(idx)
	return len(sibs) > 0 && sibs[len(sibs)-1] == idx
}
