// internal/browser/session/session.go
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IdiotStudios/rfheadless/internal/browser/dom"
	"github.com/IdiotStudios/rfheadless/internal/browser/jsbind"
	"github.com/IdiotStudios/rfheadless/internal/browser/jsexec"
	"github.com/IdiotStudios/rfheadless/internal/browser/loader"
	"github.com/IdiotStudios/rfheadless/internal/browser/sched"
	"github.com/IdiotStudios/rfheadless/internal/browser/style"
	"github.com/IdiotStudios/rfheadless/internal/config"
)

// Session owns one page-load's worth of state: the element arena, the
// cascade resolver, the logically-clocked scheduler, and the script runtime.
// Everything is rebuilt wholesale on the next load, which is what keeps
// navigations independent and runs deterministic.
type Session struct {
	id     string
	logger *zap.Logger
	cfg    config.ScriptConfig

	arena    *dom.Arena
	resolver *style.Resolver
	sched    *sched.Scheduler
	runtime  *jsexec.Runtime

	title    string
	bodyText string

	onConsole func(jsbind.ConsoleMessage)
	buffer    []jsbind.ConsoleMessage
}

// Snapshot is the host-facing rendering of the loaded document.
type Snapshot struct {
	Title string
	Text  string
}

// New creates an empty session. A document must be loaded before scripts can
// query anything useful.
func New(logger *zap.Logger, cfg config.ScriptConfig) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	s := &Session{
		id:     id,
		logger: logger.Named("session").With(zap.String("session_id", id)),
		cfg:    cfg,
	}
	s.install(dom.NewArena(), nil, "", "")
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// LoadHTML parses HTML and installs the resulting document, replacing any
// previously loaded one along with its scheduler and VM.
func (s *Session) LoadHTML(src string) error {
	doc, err := loader.Load(strings.NewReader(src))
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	arena := dom.NewArena()
	for _, fe := range doc.Elements {
		el := &dom.Element{
			Tag:    fe.Tag,
			ID:     fe.ID,
			Class:  fe.Class,
			Parent: fe.Parent,
			Text:   fe.Text,
		}
		for _, attr := range fe.Attrs {
			el.Attrs = append(el.Attrs, dom.Attr{Name: attr[0], Value: attr[1]})
		}
		arena.Append(el)
	}
	s.install(arena, doc.Styles, doc.Title, doc.BodyText)
	s.logger.Info("Document loaded",
		zap.Int("elements", arena.Len()),
		zap.Int("stylesheets", len(doc.Styles)))
	return nil
}

// LoadDocument installs a pre-flattened element list and stylesheet texts,
// for hosts that run their own markup pipeline.
func (s *Session) LoadDocument(arena *dom.Arena, sheets []string, title, bodyText string) {
	s.install(arena, sheets, title, bodyText)
}

// install wires a fresh arena/resolver/scheduler/VM. Console sinks survive
// navigation; queued work does not.
func (s *Session) install(arena *dom.Arena, sheets []string, title, bodyText string) {
	s.arena = arena
	s.title = title
	s.bodyText = bodyText

	s.resolver = style.NewResolver(s.logger, arena)
	s.resolver.Rebuild(sheets)

	s.sched = sched.New(s.logger)
	s.sched.SetMaxDrainIterations(s.cfg.MaxDrainIterations)

	s.runtime = jsexec.NewRuntime(s.logger, s.cfg, s.sched, arena, s.resolver)
	s.runtime.Bridge().SetDocumentMeta(title, bodyText)
	s.runtime.Bridge().SetConsoleSink(s.consume)
}

// consume enriches a console message with source position parsed from its
// stack, then forwards it to the host channel or the in-memory buffer.
func (s *Session) consume(msg jsbind.ConsoleMessage) {
	if msg.Source == "" && msg.Stack != "" {
		if src, line, col, ok := ParseStackInfo(msg.Stack); ok {
			msg.Source, msg.Line, msg.Column = src, line, col
		}
	}
	if s.onConsole != nil {
		s.onConsole(msg)
		return
	}
	s.buffer = append(s.buffer, msg)
}

// OnConsole registers the host console channel. Passing nil reverts to
// buffering.
func (s *Session) OnConsole(fn func(jsbind.ConsoleMessage)) {
	s.onConsole = fn
}

// ConsoleMessages returns and clears messages buffered while no channel was
// registered.
func (s *Session) ConsoleMessages() []jsbind.ConsoleMessage {
	out := s.buffer
	s.buffer = nil
	return out
}

// Evaluate runs one synchronous script turn, then drains scheduled work
// until idle so microtasks queued by the script observe standard event-loop
// ordering.
func (s *Session) Evaluate(ctx context.Context, script string) (interface{}, error) {
	result, err := s.runtime.ExecuteScript(ctx, script)
	s.sched.DrainUntilIdle(0)
	return result, err
}

// AdvanceClock moves the logical clock forward and fires everything that
// became due. This is the host's sole mechanism for making timers run.
func (s *Session) AdvanceClock(ms int64) {
	s.sched.AdvanceClock(ms)
}

// DrainUntilIdle runs queued microtasks and due macrotasks without moving
// the clock.
func (s *Session) DrainUntilIdle() {
	s.sched.DrainUntilIdle(0)
}

// Now exposes the session's logical time in milliseconds.
func (s *Session) Now() int64 {
	return s.sched.Now()
}

// TextSnapshot returns the title/body text captured at load.
func (s *Session) TextSnapshot() Snapshot {
	return Snapshot{Title: s.title, Text: s.bodyText}
}

// Arena exposes the element list for host-side inspection.
func (s *Session) Arena() *dom.Arena {
	return s.arena
}

// ComputedStyle resolves the style of the element at idx from current
// attribute state.
func (s *Session) ComputedStyle(idx int) *style.ComputedStyle {
	return s.resolver.ComputedStyle(idx)
}
