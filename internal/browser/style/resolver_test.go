// internal/browser/style/resolver_test.go
package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/IdiotStudios/rfheadless/internal/browser/dom"
)

// cascadeArena builds <body><div id="main" class="box"><p class="note"/></div></body>
// with indices body=0, div=1, p=2.
func cascadeArena(t *testing.T) *dom.Arena {
	t.Helper()
	a := dom.NewArena()
	a.Append(&dom.Element{Tag: "body", Parent: -1})
	a.Append(&dom.Element{
		Tag: "div", ID: "main", Class: "box", Parent: 0,
		Attrs: []dom.Attr{{Name: "id", Value: "main"}, {Name: "class", Value: "box"}},
	})
	a.Append(&dom.Element{
		Tag: "p", Class: "note", Parent: 1,
		Attrs: []dom.Attr{{Name: "class", Value: "note"}},
	})
	return a
}

func newTestResolver(t *testing.T, arena *dom.Arena, sheets ...string) *Resolver {
	t.Helper()
	r := NewResolver(zaptest.NewLogger(t), arena)
	r.Rebuild(sheets)
	return r
}

func TestComputedStyleCascade(t *testing.T) {
	t.Run("specificity wins over source order", func(t *testing.T) {
		arena := cascadeArena(t)
		r := newTestResolver(t, arena, `
			.note { color: blue }
			p { color: red }
		`)
		cs := r.ComputedStyle(2)
		assert.Equal(t, "#0000ff", cs.GetPropertyValue("color"))
	})

	t.Run("source order breaks specificity ties", func(t *testing.T) {
		arena := cascadeArena(t)
		r := newTestResolver(t, arena, `
			p { color: red }
			p { color: green }
		`)
		cs := r.ComputedStyle(2)
		assert.Equal(t, "#008000", cs.GetPropertyValue("color"))
	})

	t.Run("later sheet wins ties across sheets", func(t *testing.T) {
		arena := cascadeArena(t)
		r := newTestResolver(t, arena,
			`p { color: red }`,
			`p { color: blue }`,
		)
		cs := r.ComputedStyle(2)
		assert.Equal(t, "#0000ff", cs.GetPropertyValue("color"))
	})

	t.Run("properties merge across rules", func(t *testing.T) {
		arena := cascadeArena(t)
		r := newTestResolver(t, arena, `
			p { color: red; font-size: 12 }
			.note { color: blue }
		`)
		cs := r.ComputedStyle(2)
		assert.Equal(t, "#0000ff", cs.GetPropertyValue("color"))
		assert.Equal(t, "12px", cs.GetPropertyValue("font-size"))
	})

	t.Run("inline style always wins", func(t *testing.T) {
		arena := cascadeArena(t)
		arena.At(2).SetAttribute("style", "color: green")
		r := newTestResolver(t, arena, `
			#main p { color: red }
			.note { color: blue }
		`)
		cs := r.ComputedStyle(2)
		assert.Equal(t, "#008000", cs.GetPropertyValue("color"))
	})

	t.Run("id outranks classes", func(t *testing.T) {
		arena := cascadeArena(t)
		r := newTestResolver(t, arena, `
			#main { width: 100 }
			.box { width: 200 }
		`)
		cs := r.ComputedStyle(1)
		assert.Equal(t, "100px", cs.GetPropertyValue("width"))
	})
}

func TestComputedStyleLookup(t *testing.T) {
	arena := cascadeArena(t)
	r := newTestResolver(t, arena, `
		p { background: rgb(0,0,0); border-style: solid ; margin: 4 }
	`)
	cs := r.ComputedStyle(2)

	t.Run("property names are case insensitive", func(t *testing.T) {
		assert.Equal(t, "4px", cs.GetPropertyValue("MARGIN"))
	})

	t.Run("background routes through color normalizer", func(t *testing.T) {
		assert.Equal(t, "#000000", cs.GetPropertyValue("background"))
	})

	t.Run("other properties trimmed only", func(t *testing.T) {
		assert.Equal(t, "solid", cs.GetPropertyValue("border-style"))
	})

	t.Run("unknown property is empty", func(t *testing.T) {
		assert.Equal(t, "", cs.GetPropertyValue("display"))
	})

	t.Run("properties listing", func(t *testing.T) {
		assert.Equal(t, []string{"background", "border-style", "margin"}, cs.Properties())
	})
}

func TestComputedStyleSeesMutations(t *testing.T) {
	arena := cascadeArena(t)
	r := newTestResolver(t, arena, `.highlight { color: red }`)

	require.Equal(t, "", r.ComputedStyle(2).GetPropertyValue("color"))

	arena.At(2).ClassList().Add("highlight")
	assert.Equal(t, "#ff0000", r.ComputedStyle(2).GetPropertyValue("color"))

	arena.At(2).ClassList().Remove("highlight")
	assert.Equal(t, "", r.ComputedStyle(2).GetPropertyValue("color"))
}

func TestComputedStyleOutOfRange(t *testing.T) {
	arena := cascadeArena(t)
	r := newTestResolver(t, arena, `p { color: red }`)

	cs := r.ComputedStyle(99)
	assert.Equal(t, "", cs.GetPropertyValue("color"))
	assert.Empty(t, cs.Properties())
}
