// Package queue implements Ko-Log's bounded-queue dispatch core:
// routing, backpressure, the single background worker, and the
// drain/shutdown protocol. It is the busiest package in the
// module, combining backpressure policy, cooperative concurrency,
// handler resource ownership, and cross-cutting error isolation so a
// single bad handler can never poison the pipeline for its siblings.
package queue

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/handler"
	"github.com/ko-log/ko-log/koerr"
	"github.com/ko-log/ko-log/sink"
)

const rootLoggerName = "root"

type workerState int32

const (
	stateStopped workerState = iota
	stateRunning
	stateDraining
	stateClosed
)

// Config holds the queue manager's recognized options.
type Config struct {
	MaxQueueSize       int
	BackpressurePolicy Policy
	DrainTimeout       time.Duration
	// UseCoarseClock trades timestamp precision for fewer syscalls on
	// the hot path.
	UseCoarseClock bool
	// FallbackWriter receives isolated async-path handler errors,
	// prefixed with koerr.FallbackPrefix. Defaults to os.Stderr.
	FallbackWriter io.Writer
}

func (c *Config) setDefaults() {
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 1000
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 5 * time.Second
	}
	if c.FallbackWriter == nil {
		c.FallbackWriter = os.Stderr
	}
}

// Manager is the queue manager. Zero value is not usable; build one
// with New.
type Manager struct {
	cfg Config

	mu     sync.RWMutex
	routes map[string][]handler.Handler
	sinks  map[string]*sink.Sink

	queueCh          chan *core.Record
	shutdownSignal   chan struct{}
	closedForEnqueue int32 // atomic bool

	state int32 // workerState, atomic

	startOnce    sync.Once
	shutdownOnce sync.Once
	wg           sync.WaitGroup

	drops *dropCounters

	shutdownErr error
}

// New builds a Manager from cfg. The worker is not started; call
// Start explicitly.
func New(cfg Config) *Manager {
	cfg.setDefaults()
	if cfg.UseCoarseClock {
		core.StartCoarseClock()
	}
	return &Manager{
		cfg:            cfg,
		routes:         make(map[string][]handler.Handler),
		sinks:          make(map[string]*sink.Sink),
		queueCh:        make(chan *core.Record, cfg.MaxQueueSize),
		shutdownSignal: make(chan struct{}),
		drops:          newDropCounters(),
		state:          int32(stateStopped),
	}
}

// Register installs or replaces the routing entry for loggerName,
// effective immediately for new enqueues.
func (m *Manager) Register(loggerName string, handlers ...handler.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]handler.Handler, len(handlers))
	copy(cp, handlers)
	m.routes[loggerName] = cp
}

// AddSink attaches s to every handler currently routed under
// loggerName. Idempotent.
func (m *Manager) AddSink(loggerName string, s *sink.Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks[loggerName] = s
	for _, h := range m.routes[loggerName] {
		if sk, ok := h.(sinkable); ok {
			sk.AttachSink(s)
		}
	}
}

// RemoveSink detaches whatever sink is attached to loggerName's
// handlers, restoring their pre-attachment state.
func (m *Manager) RemoveSink(loggerName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sinks, loggerName)
	for _, h := range m.routes[loggerName] {
		if sk, ok := h.(sinkable); ok {
			sk.DetachSink()
		}
	}
}

type sinkable interface {
	AttachSink(s *sink.Sink)
	DetachSink()
}

// resolve returns the handler list for loggerName, falling back to the
// "root" entry, and reports whether any handlers were found.
func (m *Manager) resolve(loggerName string) ([]handler.Handler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if hs, ok := m.routes[loggerName]; ok && len(hs) > 0 {
		cp := make([]handler.Handler, len(hs))
		copy(cp, hs)
		return cp, true
	}
	if hs, ok := m.routes[rootLoggerName]; ok && len(hs) > 0 {
		cp := make([]handler.Handler, len(hs))
		copy(cp, hs)
		return cp, true
	}
	return nil, false
}

// Now returns the timestamp a new record should be stamped with,
// honoring UseCoarseClock.
func (m *Manager) Now() time.Time {
	if m.cfg.UseCoarseClock {
		return core.CoarseNow()
	}
	return time.Now()
}

func handlerID(h handler.Handler) string {
	if id, ok := h.(handler.Identifiable); ok {
		return id.ID()
	}
	return fmt.Sprintf("%T@%p", h, h)
}

// PushSync runs the synchronous path: resolve handlers, call EmitSync
// on each, and return only after all of them have finished or failed.
func (m *Manager) PushSync(record *core.Record) error {
	handlers, ok := m.resolve(record.LoggerName)
	if !ok {
		record.Release()
		return koerr.New(koerr.DispatchError, koerr.CodeDispatchNoHandlers, nil).
			WithContext("logger", record.LoggerName)
	}

	// Each handler holds its own reference to record and releases it
	// independently once its own pipeline run is done, rather than the
	// whole batch sharing a single release after the last handler.
	record.SetRefCount(len(handlers))
	outcomes := make([]koerr.HandlerOutcome, 0, len(handlers))
	for _, h := range handlers {
		err := h.EmitSync(record)
		record.Release()
		outcomes = append(outcomes, koerr.HandlerOutcome{HandlerID: handlerID(h), Err: err})
	}

	return koerr.Composite(koerr.CodeDispatchComposite, koerr.DispatchError, outcomes)
}

// Enqueue runs the asynchronous path, applying the configured
// backpressure policy.
func (m *Manager) Enqueue(record *core.Record) error {
	if atomic.LoadInt32(&m.closedForEnqueue) == 1 {
		record.Release()
		return koerr.New(koerr.DispatchError, koerr.CodeDispatchClosed, nil)
	}

	switch m.cfg.BackpressurePolicy {
	case Drop:
		select {
		case m.queueCh <- record:
			return nil
		default:
			m.drops.inc(record.LoggerName, "drop")
			record.Release()
			return nil
		}

	case DropOldest:
		select {
		case m.queueCh <- record:
			return nil
		default:
		}
		select {
		case evicted := <-m.queueCh:
			m.drops.inc(evicted.LoggerName, "drop_oldest")
			evicted.Release()
		default:
		}
		select {
		case m.queueCh <- record:
			return nil
		default:
			m.drops.inc(record.LoggerName, "drop_oldest")
			record.Release()
			return nil
		}

	case Block:
		fallthrough
	default:
		select {
		case m.queueCh <- record:
			return nil
		default:
		}
		select {
		case m.queueCh <- record:
			return nil
		case <-m.shutdownSignal:
			record.Release()
			return koerr.New(koerr.DispatchError, koerr.CodeDispatchClosed, nil)
		}
	}
}

// DropCount returns the number of records dropped for (loggerName,
// reason), where reason is "drop" or "drop_oldest".
func (m *Manager) DropCount(loggerName, reason string) uint64 {
	return m.drops.Get(loggerName, reason)
}

// Start launches the background worker. Idempotent; only the first
// call has effect.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		atomic.StoreInt32(&m.state, int32(stateRunning))
		m.wg.Add(1)
		go m.run()
	})
}

func (m *Manager) run() {
	defer m.wg.Done()
	for {
		select {
		case record := <-m.queueCh:
			m.dispatchAsync(record)
		case <-m.shutdownSignal:
			atomic.StoreInt32(&m.state, int32(stateDraining))
			m.drain()
			return
		}
	}
}

// drain consumes whatever remains buffered, stopping as soon as the
// queue is empty or drainTimeout elapses — an empty queue must not
// wait out the full timeout.
func (m *Manager) drain() {
	deadline := time.After(m.cfg.DrainTimeout)
	for {
		if len(m.queueCh) == 0 {
			return
		}
		select {
		case record := <-m.queueCh:
			m.dispatchAsync(record)
		case <-deadline:
			return
		}
	}
}

// dispatchAsync is the worker loop body. Handler failures are
// isolated: caught, written to the fallback error
// channel, and never stop the worker or sibling handlers.
func (m *Manager) dispatchAsync(record *core.Record) {
	handlers, ok := m.resolve(record.LoggerName)
	if !ok {
		record.Release()
		fmt.Fprintf(m.cfg.FallbackWriter, "%s %s logger=%s\n",
			koerr.FallbackPrefix, koerr.CodeDispatchNoHandlers, record.LoggerName)
		return
	}

	record.SetRefCount(len(handlers))
	for _, h := range handlers {
		if err := h.EmitAsync(record); err != nil {
			m.reportAsyncError(err, h)
		}
		record.Release()
	}
}

func (m *Manager) reportAsyncError(err error, h handler.Handler) {
	code := "HANDLER::IO::WRITE::ERROR"
	if ke, ok := err.(*koerr.Error); ok {
		code = ke.Code
	}
	fmt.Fprintf(m.cfg.FallbackWriter, "%s %s handler=%s: %v\n",
		koerr.FallbackPrefix, code, handlerID(h), err)
}

// Shutdown transitions the manager to draining, stops accepting new
// enqueues, waits for the worker to drain (or time out), closes every
// registered handler, and transitions to stopped. Idempotent: later
// calls return the same result as the first.
func (m *Manager) Shutdown() error {
	m.shutdownOnce.Do(func() {
		atomic.StoreInt32(&m.closedForEnqueue, 1)
		close(m.shutdownSignal)
		m.wg.Wait()

		atomic.StoreInt32(&m.state, int32(stateStopped))

		m.mu.RLock()
		seen := make(map[handler.Handler]bool)
		var all []handler.Handler
		for _, hs := range m.routes {
			for _, h := range hs {
				if !seen[h] {
					seen[h] = true
					all = append(all, h)
				}
			}
		}
		m.mu.RUnlock()

		outcomes := make([]koerr.HandlerOutcome, 0, len(all))
		for _, h := range all {
			outcomes = append(outcomes, koerr.HandlerOutcome{
				HandlerID: handlerID(h),
				Err:       h.Close(),
			})
		}
		m.shutdownErr = koerr.Composite(koerr.CodeShutdownComposite, koerr.HandlerIOError, outcomes)
	})
	return m.shutdownErr
}
