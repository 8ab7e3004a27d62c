// internal/browser/jsbind/element.go
package jsbind

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/IdiotStudios/rfheadless/internal/browser/dom"
)

// nodeRef ties a JS wrapper object back to its arena slot. Missing-element
// stubs carry a detached element and idx -1 so every operation stays safe.
type nodeRef struct {
	el  *dom.Element
	idx int
}

const nodeRefProp = "__rf_node_ref__"

// wrapElement converts an arena index into a JS element object.
func (b *Bridge) wrapElement(idx int) goja.Value {
	el := b.arena.At(idx)
	if el == nil {
		return b.wrapMissing()
	}
	return b.wrap(&nodeRef{el: el, idx: idx})
}

// wrapMissing returns the inert stub used for failed queries: getAttribute
// yields null, textContent() the empty string, mutations are swallowed.
func (b *Bridge) wrapMissing() goja.Value {
	return b.wrap(&nodeRef{el: &dom.Element{Parent: -1}, idx: -1})
}

func (b *Bridge) wrap(ref *nodeRef) goja.Value {
	obj := b.vm.NewObject()

	// Hidden back-reference for unwrapping (non-enumerable).
	obj.DefineDataProperty(nodeRefProp, b.vm.ToValue(ref), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)

	obj.Set("tag", ref.el.Tag)
	b.defineGetter(obj, "id", func() goja.Value {
		return b.vm.ToValue(ref.el.ID)
	})

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if val, ok := ref.el.GetAttribute(name); ok {
			return b.vm.ToValue(val)
		}
		return goja.Null()
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		if ref.idx >= 0 {
			ref.el.SetAttribute(call.Argument(0).String(), call.Argument(1).String())
		}
		return goja.Undefined()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		if ref.idx >= 0 {
			ref.el.RemoveAttribute(call.Argument(0).String())
		}
		return goja.Undefined()
	})
	obj.Set("matches", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(b.arena.Matches(ref.idx, call.Argument(0).String()))
	})

	// textContent and innerHTML are callables with get/set arity: no
	// argument reads, one argument writes. Property-style access would
	// break scripts written against the engine's established surface.
	obj.Set("textContent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			if ref.idx >= 0 {
				ref.el.Text = call.Argument(0).String()
			}
			return goja.Undefined()
		}
		return b.vm.ToValue(ref.el.Text)
	})
	obj.Set("innerHTML", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			if ref.idx >= 0 {
				ref.el.SetInnerHTML(call.Argument(0).String())
			}
			return goja.Undefined()
		}
		return b.vm.ToValue(ref.el.InnerHTML())
	})

	// classList and dataset are rebuilt on each access so they always
	// reflect the current attribute state.
	b.defineGetter(obj, "classList", func() goja.Value {
		return b.wrapClassList(ref)
	})
	b.defineGetter(obj, "dataset", func() goja.Value {
		return b.wrapDataset(ref)
	})

	return obj
}

func (b *Bridge) wrapClassList(ref *nodeRef) goja.Value {
	list := ref.el.ClassList()
	obj := b.vm.NewObject()
	obj.Set("add", func(call goja.FunctionCall) goja.Value {
		if ref.idx >= 0 {
			list.Add(call.Argument(0).String())
		}
		return goja.Undefined()
	})
	obj.Set("remove", func(call goja.FunctionCall) goja.Value {
		if ref.idx >= 0 {
			list.Remove(call.Argument(0).String())
		}
		return goja.Undefined()
	})
	obj.Set("toggle", func(call goja.FunctionCall) goja.Value {
		if ref.idx < 0 {
			return b.vm.ToValue(false)
		}
		return b.vm.ToValue(list.Toggle(call.Argument(0).String()))
	})
	obj.Set("contains", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(list.Contains(call.Argument(0).String()))
	})
	obj.Set("length", func(goja.FunctionCall) goja.Value {
		return b.vm.ToValue(list.Len())
	})
	obj.Set("toString", func(goja.FunctionCall) goja.Value {
		return b.vm.ToValue(list.String())
	})
	return obj
}

func (b *Bridge) wrapDataset(ref *nodeRef) goja.Value {
	obj := b.vm.NewObject()
	for _, key := range ref.el.DatasetKeys() {
		key := key
		b.defineAccessor(obj, key,
			func() goja.Value {
				if val, ok := ref.el.DatasetGet(key); ok {
					return b.vm.ToValue(val)
				}
				return goja.Undefined()
			},
			func(v goja.Value) {
				if ref.idx >= 0 {
					ref.el.DatasetSet(key, v.String())
				}
			})
	}
	obj.Set("get", func(call goja.FunctionCall) goja.Value {
		if val, ok := ref.el.DatasetGet(call.Argument(0).String()); ok {
			return b.vm.ToValue(val)
		}
		return goja.Undefined()
	})
	obj.Set("set", func(call goja.FunctionCall) goja.Value {
		if ref.idx >= 0 {
			ref.el.DatasetSet(call.Argument(0).String(), call.Argument(1).String())
		}
		return goja.Undefined()
	})
	return obj
}

// unwrapElement recovers the nodeRef behind a JS element wrapper, or nil.
func (b *Bridge) unwrapElement(val goja.Value) *nodeRef {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj := val.ToObject(b.vm)
	if obj == nil {
		return nil
	}
	refVal := obj.Get(nodeRefProp)
	if refVal == nil || goja.IsUndefined(refVal) {
		return nil
	}
	ref, _ := refVal.Export().(*nodeRef)
	return ref
}

func (b *Bridge) defineGetter(obj *goja.Object, name string, getter func() goja.Value) {
	b.defineAccessor(obj, name, getter, nil)
}

func (b *Bridge) defineAccessor(obj *goja.Object, name string, getter func() goja.Value, setter func(goja.Value)) {
	get := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return getter()
	})
	set := goja.Undefined()
	if setter != nil {
		set = b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			setter(call.Argument(0))
			return goja.Undefined()
		})
	}
	if err := obj.DefineAccessorProperty(name, get, set, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		b.logger.Error("Failed to define accessor", zap.String("property", name), zap.Error(err))
	}
}
