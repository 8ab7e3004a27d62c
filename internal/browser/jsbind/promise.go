// internal/browser/jsbind/promise.go
package jsbind

import (
	"errors"

	"github.com/dop251/goja"

	"github.com/IdiotStudios/rfheadless/internal/browser/sched"
)

// installDeferredValue installs a Promise constructor backed by the
// scheduler's DeferredValue primitive, but only when the scripting
// environment lacks a native one. Goja ships a native Promise, so in
// practice this is a fallback for stripped-down runtimes; the shim keeps the
// standard settle-once and microtask-delivery semantics either way.
func (b *Bridge) installDeferredValue() {
	if existing := b.vm.Get("Promise"); existing != nil && !goja.IsUndefined(existing) && !goja.IsNull(existing) {
		return
	}
	b.InstallDeferredPromise()
}

// InstallDeferredPromise force-installs the DeferredValue-backed Promise
// constructor, replacing whatever is currently bound. Exposed for hosts and
// tests that want the deterministic shim regardless of the VM's builtins.
func (b *Bridge) InstallDeferredPromise() {
	ctor := b.vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		d := sched.NewDeferred(b.sched, nil)
		if executor, ok := goja.AssertFunction(call.Argument(0)); ok {
			resolve := b.vm.ToValue(func(inner goja.FunctionCall) goja.Value {
				d.Resolve(inner.Argument(0).Export())
				return goja.Undefined()
			})
			reject := b.vm.ToValue(func(inner goja.FunctionCall) goja.Value {
				d.Reject(inner.Argument(0).Export())
				return goja.Undefined()
			})
			if _, err := executor(goja.Undefined(), resolve, reject); err != nil {
				// A throwing executor rejects the new value.
				d.Reject(err)
			}
		}
		return b.wrapDeferred(d)
	}).(*goja.Object)

	ctor.Set("resolve", func(call goja.FunctionCall) goja.Value {
		return b.wrapDeferred(sched.Resolved(b.sched, call.Argument(0).Export()))
	})
	ctor.Set("reject", func(call goja.FunctionCall) goja.Value {
		return b.wrapDeferred(sched.Rejected(b.sched, call.Argument(0).Export()))
	})

	b.vm.GlobalObject().Set("Promise", ctor)
}

// wrapDeferred exposes a DeferredValue to script as a thenable.
func (b *Bridge) wrapDeferred(d *sched.DeferredValue) *goja.Object {
	obj := b.vm.NewObject()
	obj.Set("then", func(call goja.FunctionCall) goja.Value {
		onFulfilled := b.toReaction(call.Argument(0))
		onRejected := b.toReaction(call.Argument(1))
		return b.wrapDeferred(d.Then(onFulfilled, onRejected))
	})
	obj.Set("catch", func(call goja.FunctionCall) goja.Value {
		return b.wrapDeferred(d.Catch(b.toReaction(call.Argument(0))))
	})
	return obj
}

// toReaction adapts a script callback to a scheduler reaction. Non-callable
// arguments yield a nil reaction, which propagates settlement unchanged.
func (b *Bridge) toReaction(val goja.Value) sched.Reaction {
	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil
	}
	return func(v interface{}) (interface{}, error) {
		res, err := fn(goja.Undefined(), b.vm.ToValue(v))
		if err != nil {
			return nil, errors.New(err.Error())
		}
		return res.Export(), nil
	}
}
