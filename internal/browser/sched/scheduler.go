// internal/browser/sched/scheduler.go
package sched

import (
	"fmt"

	"go.uber.org/zap"
)

// Scheduler is the single-threaded, logically-clocked task queue for one
// page-load session. Time only moves when AdvanceClock is called; there is
// no wall-clock coupling, so a fixed call sequence always produces the same
// execution order. One Scheduler is constructed per session and torn down on
// navigation.
type Scheduler struct {
	logger  *zap.Logger
	onError func(msg string)

	now     int64
	micro   []func()
	timers  []*timer
	nextID  int64
	maxIter int
}

// timer is one macrotask. Interval zero means one-shot; nonzero timers are
// re-inserted after firing under the same id.
type timer struct {
	id       int64
	due      int64
	interval int64
	fn       func()
}

// DefaultMaxDrainIterations bounds DrainUntilIdle against runaway timer
// chains. Reaching the bound stops the loop quietly.
const DefaultMaxDrainIterations = 100000

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger:  logger.Named("sched"),
		maxIter: DefaultMaxDrainIterations,
	}
}

// SetErrorSink registers the console-error channel callback errors are
// reported to.
func (s *Scheduler) SetErrorSink(fn func(msg string)) {
	s.onError = fn
}

// SetMaxDrainIterations overrides the drain bound; values <= 0 restore the
// default.
func (s *Scheduler) SetMaxDrainIterations(n int) {
	if n <= 0 {
		n = DefaultMaxDrainIterations
	}
	s.maxIter = n
}

// Now returns the logical clock in milliseconds.
func (s *Scheduler) Now() int64 {
	return s.now
}

// EnqueueMicrotask appends fn to the microtask queue. Microtasks have no
// identity and cannot be cancelled.
func (s *Scheduler) EnqueueMicrotask(fn func()) {
	if fn == nil {
		return
	}
	s.micro = append(s.micro, fn)
}

// SetTimer registers a macrotask due after delay milliseconds of logical
// time. Negative delays clamp to zero. A nonzero interval makes the timer
// self-rescheduling. Ids are strictly increasing and never reused.
func (s *Scheduler) SetTimer(fn func(), delay, interval int64) int64 {
	if delay < 0 {
		delay = 0
	}
	if interval < 0 {
		interval = 0
	}
	s.nextID++
	id := s.nextID
	s.timers = append(s.timers, &timer{
		id:       id,
		due:      s.now + delay,
		interval: interval,
		fn:       fn,
	})
	return id
}

// CancelTimer removes the macrotask with the given id. Unknown ids are a
// no-op, so cancelling twice never errors.
func (s *Scheduler) CancelTimer(id int64) {
	for i, t := range s.timers {
		if t.id == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// DrainMicrotasks pops and invokes queued microtasks in FIFO order until the
// queue is empty, including tasks enqueued while draining. A panicking
// callback is reported to the error sink and does not stop the drain.
func (s *Scheduler) DrainMicrotasks() {
	for len(s.micro) > 0 {
		fn := s.micro[0]
		s.micro = s.micro[1:]
		s.invoke(fn, "microtask")
	}
}

// RunOneMacrotask fires the first timer in insertion order whose due time
// has been reached. Ties among overdue timers break by registration order,
// not due value; callers depending on firing order must not assume strict
// due-time ordering. Interval timers are re-inserted, with their due advanced
// by one period so catch-up firings land on period boundaries, before the
// callback runs; cancelling the interval's id from inside its own callback
// therefore stops it. Reports whether any timer fired.
func (s *Scheduler) RunOneMacrotask() bool {
	for i, t := range s.timers {
		if t.due > s.now {
			continue
		}
		s.timers = append(s.timers[:i], s.timers[i+1:]...)
		if t.interval > 0 {
			// Re-insert before invoking so a callback that cancels its own
			// id removes the next occurrence too.
			s.timers = append(s.timers, &timer{
				id:       t.id,
				due:      t.due + t.interval,
				interval: t.interval,
				fn:       t.fn,
			})
		}
		s.invoke(t.fn, "macrotask")
		return true
	}
	return false
}

// DrainUntilIdle alternates a full microtask drain with one macrotask run
// until no macrotask is due, then performs a final microtask drain.
// Microtasks always run to exhaustion before any macrotask fires. The loop
// is bounded by maxIter as a runaway safeguard; reaching the bound stops
// quietly.
func (s *Scheduler) DrainUntilIdle(maxIter int) {
	if maxIter <= 0 {
		maxIter = s.maxIter
	}
	for i := 0; i < maxIter; i++ {
		s.DrainMicrotasks()
		if !s.RunOneMacrotask() {
			break
		}
	}
	s.DrainMicrotasks()
}

// AdvanceClock adds ms to the logical clock and drains until idle. This is
// the sole mechanism by which timers fire.
func (s *Scheduler) AdvanceClock(ms int64) {
	if ms > 0 {
		s.now += ms
	}
	s.DrainUntilIdle(0)
}

// PendingTimers returns the number of registered macrotasks (diagnostics).
func (s *Scheduler) PendingTimers() int {
	return len(s.timers)
}

// invoke runs a callback, converting panics into console-error reports so a
// throwing callback never stops the drain loop.
func (s *Scheduler) invoke(fn func(), kind string) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("uncaught error in %s: %v", kind, r)
			s.logger.Error("Callback panicked", zap.String("kind", kind), zap.Any("error", r))
			if s.onError != nil {
				s.onError(msg)
			}
		}
	}()
	fn()
}
