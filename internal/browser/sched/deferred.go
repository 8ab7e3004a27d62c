// internal/browser/sched/deferred.go
package sched

import "fmt"

// DeferredValue is a settle-once asynchronous result driven entirely by the
// scheduler's microtask queue. It exists for hosts whose scripting
// environment lacks a native promise; reactions are never invoked
// synchronously, always via a freshly enqueued microtask. No locking: the
// scheduler model is single-threaded and cooperative.

// DeferredState enumerates the settlement states.
type DeferredState int

const (
	StatePending DeferredState = iota
	StateFulfilled
	StateRejected
)

// Reaction transforms a settled value. Returning an error rejects the
// derived DeferredValue, which is what makes chains propagate failures.
type Reaction func(v interface{}) (interface{}, error)

type pendingReaction struct {
	onFulfilled Reaction
	onRejected  Reaction
	next        *DeferredValue
}

type DeferredValue struct {
	sched     *Scheduler
	state     DeferredState
	result    interface{}
	reactions []pendingReaction
}

// NewDeferred runs executor synchronously with resolve/reject settlement
// functions. The first settlement wins; later calls are no-ops.
func NewDeferred(s *Scheduler, executor func(resolve, reject func(interface{}))) *DeferredValue {
	d := &DeferredValue{sched: s}
	if executor != nil {
		executor(d.Resolve, d.Reject)
	}
	return d
}

// Resolved returns a DeferredValue already fulfilled with v.
func Resolved(s *Scheduler, v interface{}) *DeferredValue {
	d := &DeferredValue{sched: s}
	d.Resolve(v)
	return d
}

// Rejected returns a DeferredValue already rejected with reason.
func Rejected(s *Scheduler, reason interface{}) *DeferredValue {
	d := &DeferredValue{sched: s}
	d.Reject(reason)
	return d
}

func (d *DeferredValue) State() DeferredState {
	return d.state
}

// Result returns the settled value or rejection reason; nil while pending.
func (d *DeferredValue) Result() interface{} {
	return d.result
}

// Resolve fulfills a pending DeferredValue. The first settlement call wins;
// later calls are no-ops.
func (d *DeferredValue) Resolve(v interface{}) {
	d.settle(StateFulfilled, v)
}

// Reject settles a pending DeferredValue with a rejection reason.
func (d *DeferredValue) Reject(reason interface{}) {
	d.settle(StateRejected, reason)
}

func (d *DeferredValue) settle(state DeferredState, result interface{}) {
	if d.state != StatePending {
		return
	}
	d.state = state
	d.result = result
	for _, r := range d.reactions {
		d.scheduleReaction(r)
	}
	d.reactions = nil
}

// Then attaches a reaction pair and returns the derived DeferredValue. Nil
// callbacks pass the settlement through unchanged, preserving standard
// promise-chaining semantics. If the source is already settled the reaction
// still runs via a fresh microtask, never synchronously.
func (d *DeferredValue) Then(onFulfilled, onRejected Reaction) *DeferredValue {
	next := &DeferredValue{sched: d.sched}
	r := pendingReaction{onFulfilled: onFulfilled, onRejected: onRejected, next: next}
	if d.state == StatePending {
		d.reactions = append(d.reactions, r)
	} else {
		d.scheduleReaction(r)
	}
	return next
}

// Catch is sugar for Then(nil, onRejected).
func (d *DeferredValue) Catch(onRejected Reaction) *DeferredValue {
	return d.Then(nil, onRejected)
}

func (d *DeferredValue) scheduleReaction(r pendingReaction) {
	state, result := d.state, d.result
	d.sched.EnqueueMicrotask(func() {
		var cb Reaction
		if state == StateFulfilled {
			cb = r.onFulfilled
		} else {
			cb = r.onRejected
		}
		if cb == nil {
			// Pass-through: fulfillment and rejection both propagate.
			r.next.settle(state, result)
			return
		}
		out, err := safeReact(cb, result)
		if err != nil {
			r.next.Reject(err)
			return
		}
		r.next.Resolve(out)
	})
}

// safeReact invokes a reaction, converting panics into rejection reasons.
func safeReact(cb Reaction, v interface{}) (out interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("reaction panicked: %v", rec)
		}
	}()
	return cb(v)
}
