// internal/browser/jsbind/timers.go
package jsbind

import "github.com/dop251/goja"

// initTimers installs setTimeout/setInterval/clearTimeout/clearInterval and
// queueMicrotask, all backed by the session scheduler. Nothing here touches
// the wall clock: timers fire only when the host advances the logical clock.
func (b *Bridge) initTimers() {
	global := b.vm.GlobalObject()

	global.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return b.vm.ToValue(0)
		}
		delay := call.Argument(1).ToInteger()
		id := b.sched.SetTimer(func() { b.callJS(fn) }, delay, 0)
		return b.vm.ToValue(id)
	})

	global.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return b.vm.ToValue(0)
		}
		delay := call.Argument(1).ToInteger()
		interval := delay
		if interval < 1 {
			// A zero period would re-fire forever within one drain;
			// clamp to the smallest logical tick.
			interval = 1
		}
		id := b.sched.SetTimer(func() { b.callJS(fn) }, delay, interval)
		return b.vm.ToValue(id)
	})

	clear := func(call goja.FunctionCall) goja.Value {
		b.sched.CancelTimer(call.Argument(0).ToInteger())
		return goja.Undefined()
	}
	global.Set("clearTimeout", clear)
	global.Set("clearInterval", clear)

	global.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
			b.sched.EnqueueMicrotask(func() { b.callJS(fn) })
		}
		return goja.Undefined()
	})
}
