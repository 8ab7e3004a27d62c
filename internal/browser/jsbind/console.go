// internal/browser/jsbind/console.go
package jsbind

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// ConsoleMessage is one console.log/console.error emission. Text is the
// joined argument string; Stack is a best-effort call-stack string; Source,
// Line and Column are filled in by whoever consumes the stack (the session
// parses them out of Stack).
type ConsoleMessage struct {
	Level  string
	Text   string
	Stack  string
	Source string
	Line   int
	Column int
}

// SetConsoleSink registers the host reporting channel. While no sink is
// registered, messages accumulate in an in-memory buffer.
func (b *Bridge) SetConsoleSink(fn func(ConsoleMessage)) {
	b.sink = fn
}

// ConsoleMessages returns and clears the buffered messages captured while no
// sink was registered.
func (b *Bridge) ConsoleMessages() []ConsoleMessage {
	out := b.buffer
	b.buffer = nil
	return out
}

func (b *Bridge) report(level, text, stack string) {
	msg := ConsoleMessage{Level: level, Text: text, Stack: stack}
	if b.sink != nil {
		b.sink(msg)
		return
	}
	b.buffer = append(b.buffer, msg)
}

// initConsole installs the console global. log/info/warn map to the log
// channel; error goes to the error channel. Each call captures a best-effort
// stack string alongside the message text.
func (b *Bridge) initConsole() {
	console := b.vm.NewObject()
	emit := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			text := b.formatArgs(call.Arguments)
			stack := b.captureStack()
			b.logger.Debug("[JS Console]",
				zap.String("level", level), zap.String("message", text))
			b.report(level, text, stack)
			return goja.Undefined()
		}
	}
	console.Set("log", emit("log"))
	console.Set("info", emit("log"))
	console.Set("warn", emit("log"))
	console.Set("error", emit("error"))
	b.vm.GlobalObject().Set("console", console)
}

// formatArgs joins console arguments, using JSON.stringify for objects when
// available so structures stay readable.
func (b *Bridge) formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
		if obj, ok := arg.(*goja.Object); ok {
			if jsJSON := b.vm.Get("JSON"); jsJSON != nil && !goja.IsUndefined(jsJSON) {
				if stringify, ok := goja.AssertFunction(jsJSON.ToObject(b.vm).Get("stringify")); ok {
					if res, err := stringify(goja.Undefined(), obj); err == nil {
						parts[i] = res.String()
					}
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

// captureStack renders the current VM call stack in the usual
// "at func (src:line:col)" shape.
func (b *Bridge) captureStack() string {
	frames := b.vm.CaptureCallStack(0, nil)
	var lines []string
	for _, frame := range frames {
		pos := frame.Position()
		name := frame.FuncName()
		if name == "" {
			name = "<anonymous>"
		}
		src := frame.SrcName()
		if src == "" {
			src = "<eval>"
		}
		lines = append(lines, fmt.Sprintf("    at %s (%s:%d:%d)", name, src, pos.Line, pos.Column))
	}
	return strings.Join(lines, "\n")
}
