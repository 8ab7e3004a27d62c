// internal/browser/session/session_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/IdiotStudios/rfheadless/internal/browser/jsbind"
	"github.com/IdiotStudios/rfheadless/internal/config"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
  <title>Test Page</title>
  <style>
    .box { color: red; font-size: 12 }
    #main { color: blue }
  </style>
</head>
<body>
  <div id="main" class="box" data-user-id="7">hello</div>
  <p class="note">world</p>
</body>
</html>`

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.ScriptConfig{
		Timeout:          5 * time.Second,
		EnableJavaScript: true,
	}
	s := New(zaptest.NewLogger(t), cfg)
	require.NoError(t, s.LoadHTML(testPage))
	return s
}

func TestSessionEndToEnd(t *testing.T) {
	s := newTestSession(t)

	t.Run("query and computed style", func(t *testing.T) {
		got, err := s.Evaluate(context.Background(), `
			getComputedStyle(document.querySelector("#main")).getPropertyValue("color")
		`)
		require.NoError(t, err)
		assert.Equal(t, "#0000ff", got)
	})

	t.Run("unit normalization", func(t *testing.T) {
		got, err := s.Evaluate(context.Background(), `
			getComputedStyle(document.querySelector("#main")).getPropertyValue("font-size")
		`)
		require.NoError(t, err)
		assert.Equal(t, "12px", got)
	})

	t.Run("mutation changes resolution", func(t *testing.T) {
		got, err := s.Evaluate(context.Background(), `
			var el = document.querySelector(".note");
			el.setAttribute("style", "color: green");
			getComputedStyle(el).getPropertyValue("color")
		`)
		require.NoError(t, err)
		assert.Equal(t, "#008000", got)
	})

	t.Run("dataset view", func(t *testing.T) {
		got, err := s.Evaluate(context.Background(), `document.querySelector("#main").dataset.userId`)
		require.NoError(t, err)
		assert.Equal(t, "7", got)
	})

	t.Run("missing element is inert", func(t *testing.T) {
		got, err := s.Evaluate(context.Background(), `
			var ghost = document.querySelector("#nope");
			ghost.setAttribute("id", "x");
			String(ghost.getAttribute("id"))
		`)
		require.NoError(t, err)
		assert.Equal(t, "null", got)
	})
}

func TestSessionTimers(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Evaluate(context.Background(), `
		var ticks = 0;
		setInterval(function() { ticks++ }, 10);
	`)
	require.NoError(t, err)

	s.AdvanceClock(25)

	got, err := s.Evaluate(context.Background(), `ticks`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
	assert.Equal(t, int64(25), s.Now())
}

func TestSessionMicrotasksDrainAfterEvaluate(t *testing.T) {
	s := newTestSession(t)

	// Evaluate drains the queue, so microtasks queued by the script have
	// already run by the time it returns.
	_, err := s.Evaluate(context.Background(), `
		var done = false;
		queueMicrotask(function() { done = true });
	`)
	require.NoError(t, err)

	got, err := s.Evaluate(context.Background(), `done`)
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestSessionConsole(t *testing.T) {
	t.Run("buffered messages carry source positions", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.Evaluate(context.Background(), `console.log("captured")`)
		require.NoError(t, err)

		msgs := s.ConsoleMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "log", msgs[0].Level)
		assert.Equal(t, "captured", msgs[0].Text)
		assert.NotEmpty(t, msgs[0].Source)
		assert.Greater(t, msgs[0].Line, 0)

		// Buffer is drained by the read.
		assert.Empty(t, s.ConsoleMessages())
	})

	t.Run("registered channel receives directly", func(t *testing.T) {
		s := newTestSession(t)
		var got []jsbind.ConsoleMessage
		s.OnConsole(func(m jsbind.ConsoleMessage) { got = append(got, m) })

		_, err := s.Evaluate(context.Background(), `console.error("direct")`)
		require.NoError(t, err)

		require.Len(t, got, 1)
		assert.Equal(t, "error", got[0].Level)
		assert.Empty(t, s.ConsoleMessages())
	})

	t.Run("timer exceptions surface on the error channel", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.Evaluate(context.Background(), `setTimeout(function() { throw new Error("late failure") }, 5)`)
		require.NoError(t, err)

		s.AdvanceClock(5)

		msgs := s.ConsoleMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "error", msgs[0].Level)
		assert.Contains(t, msgs[0].Text, "late failure")
	})
}

func TestSessionSnapshot(t *testing.T) {
	s := newTestSession(t)

	snap := s.TextSnapshot()
	assert.Equal(t, "Test Page", snap.Title)
	assert.Contains(t, snap.Text, "hello")
	assert.Contains(t, snap.Text, "world")

	got, err := s.Evaluate(context.Background(), `document.title`)
	require.NoError(t, err)
	assert.Equal(t, "Test Page", got)
}

func TestSessionNavigationResetsState(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Evaluate(context.Background(), `var sticky = true; setTimeout(function() {}, 1000)`)
	require.NoError(t, err)
	s.AdvanceClock(5)

	require.NoError(t, s.LoadHTML(`<html><head><title>Next</title></head><body><span>next</span></body></html>`))

	// The VM, clock, and timers are all rebuilt.
	assert.Equal(t, int64(0), s.Now())
	assert.Equal(t, "Next", s.TextSnapshot().Title)

	_, err = s.Evaluate(context.Background(), `sticky`)
	require.Error(t, err)

	got, err := s.Evaluate(context.Background(), `document.querySelector("span").textContent()`)
	require.NoError(t, err)
	assert.Equal(t, "next", got)
}

func TestSessionIdentity(t *testing.T) {
	cfg := config.ScriptConfig{Timeout: time.Second, EnableJavaScript: true}
	a := New(zaptest.NewLogger(t), cfg)
	b := New(zaptest.NewLogger(t), cfg)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
