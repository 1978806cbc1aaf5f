// Package logger is a thin convenience facade over core, processor and
// queue: it assembles EventData, runs logger-level processors, builds a
// Record, and calls into a queue.Manager. It is deliberately not a
// configuration or factory system — callers build and register
// handlers themselves via the handler and queue packages.
package logger

import (
	"runtime"
	"time"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/processor"
	"github.com/ko-log/ko-log/queue"
)

// Dispatcher is the subset of *queue.Manager a Logger needs, so tests
// can substitute a fake.
type Dispatcher interface {
	PushSync(record *core.Record) error
	Enqueue(record *core.Record) error
	Now() time.Time
}

// Logger emits events under a fixed name through a Dispatcher. Safe for
// concurrent use; holds no mutable state beyond its processor list.
type Logger struct {
	name       string
	dispatcher Dispatcher
	processors []processor.Processor
	addCaller  bool
	minLevel   core.Level
}

// New builds a Logger bound to name, dispatching through m.
func New(name string, m *queue.Manager, opts ...Option) *Logger {
	l := &Logger{name: name, dispatcher: m, minLevel: core.DebugLevel}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithProcessors appends logger-level processors, run before the event
// reaches the queue.
func WithProcessors(procs ...processor.Processor) Option {
	return func(l *Logger) { l.processors = append(l.processors, procs...) }
}

// WithCallerInfo enables capturing filename/line/function on every
// call, at the usual reflection/runtime cost.
func WithCallerInfo() Option {
	return func(l *Logger) { l.addCaller = true }
}

// WithMinLevel sets the level below which Emit/EmitSync are no-ops,
// avoiding processor/render work for filtered-out events.
func WithMinLevel(min core.Level) Option {
	return func(l *Logger) { l.minLevel = min }
}

// Named returns a child Logger that shares this Logger's dispatcher and
// options but reports under a distinct hierarchical name.
func (l *Logger) Named(child string) *Logger {
	return &Logger{
		name:       l.name + "." + child,
		dispatcher: l.dispatcher,
		processors: l.processors,
		addCaller:  l.addCaller,
		minLevel:   l.minLevel,
	}
}

func (l *Logger) buildData(level core.Level, msg string, context map[string]any) (core.EventData, time.Time, bool) {
	if level < l.minLevel {
		return nil, time.Time{}, false
	}

	now := l.dispatcher.Now()
	data := core.EventData{
		core.KeyEvent:     msg,
		core.KeyLevel:     level,
		core.KeyName:      l.name,
		core.KeyTimestamp: now,
		core.KeyContext:   context,
	}

	if l.addCaller {
		if pc, file, line, ok := runtime.Caller(3); ok {
			data[core.KeyFilename] = file
			data[core.KeyLineno] = line
			data[core.KeyPathname] = file
			if fn := runtime.FuncForPC(pc); fn != nil {
				data[core.KeyFuncName] = fn.Name()
			}
		}
	}

	out, outcome, err := processor.Chain(l.processors, data)
	if err != nil || outcome == processor.Drop {
		return nil, time.Time{}, false
	}
	return out, now, true
}

// Emit queues level/msg asynchronously. A nil context is fine.
func (l *Logger) Emit(level core.Level, msg string, context map[string]any) error {
	data, now, ok := l.buildData(level, msg, context)
	if !ok {
		return nil
	}
	record := core.NewRecord(l.name, level, now, data)
	return l.dispatcher.Enqueue(record)
}

// EmitSync dispatches level/msg synchronously, returning only once
// every routed handler has finished or failed.
func (l *Logger) EmitSync(level core.Level, msg string, context map[string]any) error {
	data, now, ok := l.buildData(level, msg, context)
	if !ok {
		return nil
	}
	record := core.NewRecord(l.name, level, now, data)
	return l.dispatcher.PushSync(record)
}

// EmitException is Emit plus a captured stack snapshot of err, stored
// under core.KeyExcInfo.
func (l *Logger) EmitException(level core.Level, msg string, err error, context map[string]any) error {
	data, now, ok := l.buildData(level, msg, context)
	if !ok {
		return nil
	}
	data[core.KeyExcInfo] = core.CaptureException(err, 1)
	record := core.NewRecord(l.name, level, now, data)
	return l.dispatcher.Enqueue(record)
}

// Debug, Info, Warning, Error and Critical are Emit convenience
// shorthands for each standard level.
func (l *Logger) Debug(msg string, context map[string]any) error {
	return l.Emit(core.DebugLevel, msg, context)
}
func (l *Logger) Info(msg string, context map[string]any) error {
	return l.Emit(core.InfoLevel, msg, context)
}
func (l *Logger) Warning(msg string, context map[string]any) error {
	return l.Emit(core.WarningLevel, msg, context)
}
func (l *Logger) Error(msg string, context map[string]any) error {
	return l.Emit(core.ErrorLevel, msg, context)
}
func (l *Logger) Critical(msg string, context map[string]any) error {
	return l.Emit(core.CriticalLevel, msg, context)
}
