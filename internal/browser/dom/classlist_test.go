// internal/browser/dom/classlist_test.go
package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassList(t *testing.T) {
	t.Run("add and contains", func(t *testing.T) {
		el := &Element{Tag: "div"}
		cl := el.ClassList()

		cl.Add("active")
		assert.True(t, cl.Contains("active"))
		assert.Equal(t, "active", el.Class)

		// Adding an existing token is a no-op.
		cl.Add("active")
		assert.Equal(t, 1, cl.Len())
	})

	t.Run("remove", func(t *testing.T) {
		el := &Element{Tag: "div", Class: "a b c"}
		el.SetAttribute("class", "a b c")
		cl := el.ClassList()

		cl.Remove("b")
		assert.Equal(t, "a c", el.Class)
		cl.Remove("missing")
		assert.Equal(t, "a c", el.Class)
	})

	t.Run("toggle", func(t *testing.T) {
		el := &Element{Tag: "div"}
		cl := el.ClassList()

		assert.True(t, cl.Toggle("open"))
		assert.True(t, cl.Contains("open"))
		assert.False(t, cl.Toggle("open"))
		assert.False(t, cl.Contains("open"))
	})

	t.Run("writes through to attribute list", func(t *testing.T) {
		el := &Element{Tag: "div"}
		el.ClassList().Add("hot")

		got, ok := el.GetAttribute("class")
		assert.True(t, ok)
		assert.Equal(t, "hot", got)
	})

	t.Run("mutations affect matching", func(t *testing.T) {
		a := NewArena()
		idx := a.Append(&Element{Tag: "div", Parent: -1})

		a.At(idx).ClassList().Add("selected")
		assert.True(t, a.Matches(idx, ".selected"))

		a.At(idx).ClassList().Remove("selected")
		assert.False(t, a.Matches(idx, ".selected"))
	})
}

func TestDataset(t *testing.T) {
	t.Run("key conversion both directions", func(t *testing.T) {
		el := &Element{Tag: "div"}
		el.DatasetSet("fooBar", "1")

		got, ok := el.GetAttribute("data-foo-bar")
		assert.True(t, ok)
		assert.Equal(t, "1", got)

		val, ok := el.DatasetGet("fooBar")
		assert.True(t, ok)
		assert.Equal(t, "1", val)
	})

	t.Run("single word key", func(t *testing.T) {
		el := &Element{Tag: "div", Attrs: []Attr{{Name: "data-role", Value: "menu"}}}

		val, ok := el.DatasetGet("role")
		assert.True(t, ok)
		assert.Equal(t, "menu", val)
	})

	t.Run("missing key", func(t *testing.T) {
		el := &Element{Tag: "div"}
		_, ok := el.DatasetGet("absent")
		assert.False(t, ok)
	})

	t.Run("keys in attribute order", func(t *testing.T) {
		el := &Element{Tag: "div", Attrs: []Attr{
			{Name: "id", Value: "x"},
			{Name: "data-user-id", Value: "7"},
			{Name: "data-role", Value: "menu"},
		}}
		assert.Equal(t, []string{"userId", "role"}, el.DatasetKeys())
	})
}

func TestElementAttributes(t *testing.T) {
	t.Run("set keeps derived fields consistent", func(t *testing.T) {
		el := &Element{Tag: "div"}
		el.SetAttribute("id", "box")
		el.SetAttribute("class", "a b")

		assert.Equal(t, "box", el.ID)
		assert.Equal(t, "a b", el.Class)
	})

	t.Run("remove clears derived fields", func(t *testing.T) {
		el := &Element{Tag: "div", ID: "box", Attrs: []Attr{{Name: "id", Value: "box"}}}
		el.RemoveAttribute("id")

		assert.Equal(t, "", el.ID)
		_, ok := el.GetAttribute("id")
		assert.False(t, ok)
	})

	t.Run("remove absent attribute is a no-op", func(t *testing.T) {
		el := &Element{Tag: "div"}
		el.RemoveAttribute("nothing")
		assert.Empty(t, el.Attrs)
	})
}

func TestElementInnerHTML(t *testing.T) {
	t.Run("falls back to text before any assignment", func(t *testing.T) {
		el := &Element{Tag: "p", Text: "plain"}
		assert.Equal(t, "plain", el.InnerHTML())
	})

	t.Run("stores markup verbatim and re-derives text", func(t *testing.T) {
		el := &Element{Tag: "p", Text: "plain"}
		el.SetInnerHTML("<b>Bold</b> and <i>slanted</i>")

		assert.Equal(t, "<b>Bold</b> and <i>slanted</i>", el.InnerHTML())
		assert.Equal(t, "Bold and slanted", el.Text)
	})

	t.Run("plain markup is its own text", func(t *testing.T) {
		el := &Element{Tag: "p"}
		el.SetInnerHTML("no tags here")

		assert.Equal(t, "no tags here", el.Text)
	})
}
