// internal/browser/dom/classlist.go
package dom

import (
	"strings"
	"unicode"
)

// ClassList is a live token view over an element's class attribute. Every
// mutation is written straight back through SetAttribute so the backing
// attribute list stays authoritative.
type ClassList struct {
	el *Element
}

func (e *Element) ClassList() ClassList {
	return ClassList{el: e}
}

func (c ClassList) tokens() []string {
	if c.el == nil {
		return nil
	}
	return strings.Fields(c.el.Class)
}

func (c ClassList) write(tokens []string) {
	if c.el == nil {
		return
	}
	c.el.SetAttribute("class", strings.Join(tokens, " "))
}

func (c ClassList) Contains(name string) bool {
	for _, t := range c.tokens() {
		if t == name {
			return true
		}
	}
	return false
}

func (c ClassList) Add(name string) {
	if name == "" || c.Contains(name) {
		return
	}
	c.write(append(c.tokens(), name))
}

func (c ClassList) Remove(name string) {
	toks := c.tokens()
	out := toks[:0]
	for _, t := range toks {
		if t != name {
			out = append(out, t)
		}
	}
	c.write(out)
}

// Toggle adds the token when absent and removes it when present, returning
// whether the token is present afterwards.
func (c ClassList) Toggle(name string) bool {
	if c.Contains(name) {
		c.Remove(name)
		return false
	}
	c.Add(name)
	return true
}

func (c ClassList) Len() int {
	return len(c.tokens())
}

func (c ClassList) String() string {
	if c.el == nil {
		return ""
	}
	return c.el.Class
}

// DatasetGet looks up a data-* attribute by its camelCased key
// ("fooBar" -> "data-foo-bar").
func (e *Element) DatasetGet(key string) (string, bool) {
	return e.GetAttribute(datasetAttrName(key))
}

// DatasetSet writes a data-* attribute by its camelCased key.
func (e *Element) DatasetSet(key, value string) {
	e.SetAttribute(datasetAttrName(key), value)
}

// DatasetKeys returns the camelCased keys of all data-* attributes in
// attribute order.
func (e *Element) DatasetKeys() []string {
	var keys []string
	for _, attr := range e.Attrs {
		if strings.HasPrefix(attr.Name, "data-") {
			keys = append(keys, datasetKey(attr.Name))
		}
	}
	return keys
}

// datasetAttrName converts a camelCased dataset key to its attribute name:
// "fooBar" becomes "data-foo-bar".
func datasetAttrName(key string) string {
	var b strings.Builder
	b.WriteString("data-")
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// datasetKey converts "data-foo-bar" to "fooBar".
func datasetKey(name string) string {
	rest := strings.TrimPrefix(name, "data-")
	var b strings.Builder
	upper := false
	for _, r := range rest {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
