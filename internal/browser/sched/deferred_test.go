// internal/browser/sched/deferred_test.go
package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDeferredSettleOnce(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	t.Run("first resolution wins", func(t *testing.T) {
		d := NewDeferred(s, func(resolve, reject func(interface{})) {
			resolve("first")
			resolve("second")
			reject("third")
		})
		assert.Equal(t, StateFulfilled, d.State())
		assert.Equal(t, "first", d.Result())
	})

	t.Run("first rejection wins", func(t *testing.T) {
		d := NewDeferred(s, func(resolve, reject func(interface{})) {
			reject("nope")
			resolve("too late")
		})
		assert.Equal(t, StateRejected, d.State())
		assert.Equal(t, "nope", d.Result())
	})

	t.Run("nil executor stays pending", func(t *testing.T) {
		d := NewDeferred(s, nil)
		assert.Equal(t, StatePending, d.State())
		assert.Nil(t, d.Result())
	})
}

func TestDeferredReactionsAreAsynchronous(t *testing.T) {
	s := New(zaptest.NewLogger(t))
	d := Resolved(s, 1)

	ran := false
	d.Then(func(v interface{}) (interface{}, error) {
		ran = true
		return v, nil
	}, nil)

	// Even on an already settled value the reaction waits for the queue.
	assert.False(t, ran)
	s.DrainMicrotasks()
	assert.True(t, ran)
}

func TestDeferredChaining(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	t.Run("values flow through the chain", func(t *testing.T) {
		var got interface{}
		Resolved(s, 2).
			Then(func(v interface{}) (interface{}, error) {
				return v.(int) * 10, nil
			}, nil).
			Then(func(v interface{}) (interface{}, error) {
				got = v
				return v, nil
			}, nil)

		s.DrainMicrotasks()
		assert.Equal(t, 20, got)
	})

	t.Run("nil callbacks pass settlement through", func(t *testing.T) {
		var got interface{}
		Resolved(s, "x").
			Then(nil, nil).
			Then(func(v interface{}) (interface{}, error) {
				got = v
				return v, nil
			}, nil)

		s.DrainMicrotasks()
		assert.Equal(t, "x", got)
	})

	t.Run("rejection skips fulfillment handlers", func(t *testing.T) {
		var caught interface{}
		fulfilled := false
		Rejected(s, "bad").
			Then(func(v interface{}) (interface{}, error) {
				fulfilled = true
				return v, nil
			}, nil).
			Catch(func(v interface{}) (interface{}, error) {
				caught = v
				return nil, nil
			})

		s.DrainMicrotasks()
		assert.False(t, fulfilled)
		assert.Equal(t, "bad", caught)
	})

	t.Run("a reaction error rejects the derived value", func(t *testing.T) {
		wantErr := errors.New("transform failed")
		var caught interface{}
		Resolved(s, 1).
			Then(func(v interface{}) (interface{}, error) {
				return nil, wantErr
			}, nil).
			Catch(func(v interface{}) (interface{}, error) {
				caught = v
				return nil, nil
			})

		s.DrainMicrotasks()
		assert.Equal(t, wantErr, caught)
	})

	t.Run("catch recovers the chain", func(t *testing.T) {
		var got interface{}
		Rejected(s, "bad").
			Catch(func(v interface{}) (interface{}, error) {
				return "recovered", nil
			}).
			Then(func(v interface{}) (interface{}, error) {
				got = v
				return v, nil
			}, nil)

		s.DrainMicrotasks()
		assert.Equal(t, "recovered", got)
	})
}

func TestDeferredReactionPanicBecomesRejection(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	var caught interface{}
	Resolved(s, 1).
		Then(func(v interface{}) (interface{}, error) {
			panic("kaboom")
		}, nil).
		Catch(func(v interface{}) (interface{}, error) {
			caught = v
			return nil, nil
		})

	s.DrainMicrotasks()
	require.NotNil(t, caught)
	err, ok := caught.(error)
	require.True(t, ok)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestDeferredLateSettlement(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	d := NewDeferred(s, nil)
	var got interface{}
	d.Then(func(v interface{}) (interface{}, error) {
		got = v
		return v, nil
	}, nil)

	s.DrainMicrotasks()
	assert.Nil(t, got)

	d.Resolve(42)
	s.DrainMicrotasks()
	assert.Equal(t, 42, got)
}

func TestDeferredSettlesViaTimer(t *testing.T) {
	s := New(zaptest.NewLogger(t))

	d := NewDeferred(s, nil)
	s.SetTimer(func() { d.Resolve("done") }, 10, 0)

	var got interface{}
	d.Then(func(v interface{}) (interface{}, error) {
		got = v
		return v, nil
	}, nil)

	s.AdvanceClock(5)
	assert.Nil(t, got)

	// AdvanceClock drains, so the reaction microtask runs in the same call
	// that fires the timer.
	s.AdvanceClock(5)
	assert.Equal(t, "done", got)
}
