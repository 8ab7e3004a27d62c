// internal/browser/jsexec/runtime.go
package jsexec

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/IdiotStudios/rfheadless/internal/browser/dom"
	"github.com/IdiotStudios/rfheadless/internal/browser/jsbind"
	"github.com/IdiotStudios/rfheadless/internal/browser/sched"
	"github.com/IdiotStudios/rfheadless/internal/browser/style"
	"github.com/IdiotStudios/rfheadless/internal/config"
)

// Runtime is the persistent JavaScript environment for one loaded document:
// a Goja VM configured by the DOM bridge. Script evaluation itself is
// synchronous; asynchronous work queued by a script is owned by the
// scheduler and runs when the host drains it.
type Runtime struct {
	vm     *goja.Runtime
	bridge *jsbind.Bridge
	logger *zap.Logger
	cfg    config.ScriptConfig
}

// NewRuntime creates an initialized VM and its DOM bridge. Called once per
// document load.
func NewRuntime(logger *zap.Logger, cfg config.ScriptConfig, scheduler *sched.Scheduler, arena *dom.Arena, resolver *style.Resolver) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("jsexec")

	vm := goja.New()
	bridge := jsbind.NewBridge(log, vm, scheduler, arena, resolver)

	return &Runtime{
		vm:     vm,
		bridge: bridge,
		logger: log,
		cfg:    cfg,
	}
}

// Bridge returns the associated DOM bridge so the session can set document
// metadata and console sinks.
func (r *Runtime) Bridge() *jsbind.Bridge {
	return r.bridge
}

// ExecuteScript runs one synchronous script turn. The configured timeout
// (clamped to the context deadline) interrupts runaway scripts via
// vm.Interrupt; the logical clock never advances here.
func (r *Runtime) ExecuteScript(ctx context.Context, script string) (interface{}, error) {
	if !r.cfg.EnableJavaScript {
		return nil, fmt.Errorf("javascript evaluation is disabled")
	}
	if r.cfg.MaxScriptLen > 0 && len(script) > r.cfg.MaxScriptLen {
		return nil, fmt.Errorf("script length %d exceeds limit %d", len(script), r.cfg.MaxScriptLen)
	}

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until > 0 && until < timeout {
			timeout = until
		}
	}

	done := make(chan struct{})
	watcherDone := make(chan struct{})
	r.vm.ClearInterrupt()
	go func() {
		defer close(watcherDone)
		select {
		case <-time.After(timeout):
			r.logger.Warn("JavaScript execution timeout", zap.Duration("timeout", timeout))
			r.vm.Interrupt(fmt.Sprintf("execution timeout exceeded (%v)", timeout))
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err().Error())
		case <-done:
		}
	}()

	var result goja.Value
	var err error
	if isFunctionWrapper(script) {
		result, err = r.runFunctionWrapper(script)
	} else {
		result, err = r.vm.RunString(script)
	}

	close(done)
	<-watcherDone

	if err != nil {
		if _, ok := err.(*goja.InterruptedError); ok {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("javascript execution interrupted by context: %w", ctx.Err())
			}
			return nil, fmt.Errorf("javascript execution interrupted: %w", err)
		}
		if jsErr, ok := err.(*goja.Exception); ok {
			return nil, fmt.Errorf("javascript exception: %s", jsErr.String())
		}
		return nil, fmt.Errorf("javascript error: %w", err)
	}

	if promise, ok := result.Export().(*goja.Promise); ok {
		return r.exportPromise(promise)
	}
	return result.Export(), nil
}

// exportPromise unwraps a settled native promise. A still-pending promise is
// waiting on timers, so it is handed back for the host to drain via the
// logical clock.
func (r *Runtime) exportPromise(promise *goja.Promise) (interface{}, error) {
	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return promise.Result().Export(), nil
	case goja.PromiseStateRejected:
		return nil, fmt.Errorf("javascript promise rejected: %v", promise.Result().Export())
	default:
		r.logger.Debug("Script returned a pending promise; advance the logical clock to settle it")
		return promise, nil
	}
}

// isFunctionWrapper detects the common self-invoking wrapper shapes so they
// can be compiled and called rather than evaluated as a bare snippet.
func isFunctionWrapper(script string) bool {
	s := strings.TrimSpace(script)
	return strings.HasPrefix(s, "function") ||
		strings.HasPrefix(s, "async function") ||
		strings.HasPrefix(s, "(function") ||
		strings.HasPrefix(s, "(async function")
}

func (r *Runtime) runFunctionWrapper(script string) (goja.Value, error) {
	prog, err := goja.Compile("", script, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compile function wrapper script: %w", err)
	}
	val, err := r.vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		// Not actually callable (e.g. an IIFE already ran); return as-is.
		return val, nil
	}
	return fn(r.vm.GlobalObject())
}
