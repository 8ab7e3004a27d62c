// internal/browser/jsbind/bridge.go
package jsbind

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/IdiotStudios/rfheadless/internal/browser/dom"
	"github.com/IdiotStudios/rfheadless/internal/browser/sched"
	"github.com/IdiotStudios/rfheadless/internal/browser/style"
)

// Bridge wires the Goja runtime to the flattened document, the cascade
// resolver, and the deterministic scheduler. It installs the script-visible
// surface: document queries, element wrappers, getComputedStyle, timers,
// queueMicrotask, and the console sink. One Bridge lives for exactly one
// loaded document; navigation tears it down with the rest of the session.
type Bridge struct {
	vm       *goja.Runtime
	logger   *zap.Logger
	sched    *sched.Scheduler
	arena    *dom.Arena
	resolver *style.Resolver

	title    string
	bodyText string

	sink   func(ConsoleMessage)
	buffer []ConsoleMessage
}

// NewBridge initializes the bridge and configures the VM globals.
func NewBridge(logger *zap.Logger, vm *goja.Runtime, scheduler *sched.Scheduler, arena *dom.Arena, resolver *style.Resolver) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bridge{
		vm:       vm,
		logger:   logger.Named("jsbind"),
		sched:    scheduler,
		arena:    arena,
		resolver: resolver,
	}
	scheduler.SetErrorSink(func(msg string) {
		b.report("error", msg, "")
	})
	b.initDocument()
	b.initComputedStyle()
	b.initConsole()
	b.initTimers()
	b.installDeferredValue()
	return b
}

// SetDocumentMeta records the opaque title and body-text strings supplied by
// the loader.
func (b *Bridge) SetDocumentMeta(title, bodyText string) {
	b.title = title
	b.bodyText = bodyText
	if doc := b.vm.Get("document"); doc != nil {
		if obj, ok := doc.(*goja.Object); ok {
			obj.Set("title", title)
		}
	}
}

// initDocument exposes the document object plus bare querySelector /
// querySelectorAll aliases, which the engine has always offered alongside
// the document-scoped forms.
func (b *Bridge) initDocument() {
	doc := b.vm.NewObject()
	doc.Set("title", b.title)
	doc.Set("querySelector", b.jsQuerySelector)
	doc.Set("querySelectorAll", b.jsQuerySelectorAll)
	doc.DefineAccessorProperty("body", b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		if idx, ok := b.arena.QueryFirst("body"); ok {
			return b.wrapElement(idx)
		}
		return b.wrapMissing()
	}), goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)

	global := b.vm.GlobalObject()
	if err := global.Set("document", doc); err != nil {
		b.logger.Error("Failed to set 'document' global", zap.Error(err))
	}
	global.Set("querySelector", b.jsQuerySelector)
	global.Set("querySelectorAll", b.jsQuerySelectorAll)
}

func (b *Bridge) jsQuerySelector(call goja.FunctionCall) goja.Value {
	selector := call.Argument(0).String()
	idx, ok := b.arena.QueryFirst(selector)
	if !ok {
		// Missing elements surface as an inert stub so attribute and
		// style access never throws.
		return b.wrapMissing()
	}
	return b.wrapElement(idx)
}

func (b *Bridge) jsQuerySelectorAll(call goja.FunctionCall) goja.Value {
	selector := call.Argument(0).String()
	indices := b.arena.QueryAll(selector)
	wrapped := make([]interface{}, len(indices))
	for i, idx := range indices {
		wrapped[i] = b.wrapElement(idx)
	}
	return b.vm.ToValue(wrapped)
}

// initComputedStyle installs getComputedStyle. The returned object holds
// only the element index; every getPropertyValue call re-runs the cascade so
// attribute mutations are always visible.
func (b *Bridge) initComputedStyle() {
	b.vm.GlobalObject().Set("getComputedStyle", func(call goja.FunctionCall) goja.Value {
		ref := b.unwrapElement(call.Argument(0))
		obj := b.vm.NewObject()
		obj.Set("getPropertyValue", func(inner goja.FunctionCall) goja.Value {
			prop := inner.Argument(0).String()
			if ref == nil {
				return b.vm.ToValue("")
			}
			cs := b.resolver.ComputedStyle(ref.idx)
			return b.vm.ToValue(cs.GetPropertyValue(prop))
		})
		return obj
	})
}

// callJS invokes a script callback, routing thrown exceptions to the console
// error channel so a throwing callback never breaks a drain.
func (b *Bridge) callJS(fn goja.Callable) {
	if _, err := fn(goja.Undefined()); err != nil {
		b.logger.Debug("Script callback threw", zap.Error(err))
		b.report("error", err.Error(), "")
	}
}
