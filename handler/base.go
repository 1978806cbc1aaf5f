package handler

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/koerr"
	"github.com/ko-log/ko-log/processor"
	"github.com/ko-log/ko-log/renderer"
	"github.com/ko-log/ko-log/sink"
)

type lifecycle int32

const (
	unopened lifecycle = iota
	open
	closing
	closed
)

// Base implements the processor→renderer→sink pipeline shared by every
// handler variant. Variants embed Base, call Run from their own
// EmitSync/EmitAsync, and perform the destination-specific write step
// themselves.
type Base struct {
	Processors   []processor.Processor
	Renderer     renderer.Renderer
	LineOriented bool

	bufferRenderer renderer.BufferRenderer

	sinkMu sync.RWMutex
	sink   *sink.Sink

	SyncMu  sync.Mutex
	AsyncMu sync.Mutex

	state int32 // lifecycle, accessed atomically

	stats *Stats

	closeOnce sync.Once
	closeErr  error
}

// NewBase wires a Base's processors, renderer, line framing, renderer
// probing and stats. Each variant's constructor calls it.
func NewBase(r renderer.Renderer, procs []processor.Processor, lineOriented bool) Base {
	b := Base{
		Processors:   procs,
		Renderer:     r,
		LineOriented: lineOriented,
		stats:        NewStats(),
	}
	b.bufferRenderer, _ = r.(renderer.BufferRenderer)
	return b
}

// Stats returns a snapshot of this handler's counters.
func (b *Base) Stats() Snapshot { return b.stats.Snapshot() }

// AttachSink installs s for every emission until DetachSink is called.
// Attachment is idempotent.
func (b *Base) AttachSink(s *sink.Sink) {
	b.sinkMu.Lock()
	b.sink = s
	b.sinkMu.Unlock()
}

// DetachSink restores the handler to its pre-attachment state.
func (b *Base) DetachSink() {
	b.sinkMu.Lock()
	b.sink = nil
	b.sinkMu.Unlock()
}

// closedErr is returned by Run once Close has begun.
func closedErr() error {
	return koerr.New(koerr.HandlerIOError, koerr.CodeHandlerClosed, nil)
}

// IsClosed reports whether Close has begun: it is true while the
// handler is closing and after it is closed.
func (b *Base) IsClosed() bool {
	return lifecycle(atomic.LoadInt32(&b.state)) >= closing
}

// MarkOpen transitions unopened→open on first successful write. A
// fresh open after rotation is still open, so variants call this
// unconditionally after any successful write; the CAS is a no-op once
// the state has moved past unopened.
func (b *Base) MarkOpen() {
	atomic.CompareAndSwapInt32(&b.state, int32(unopened), int32(open))
}

// CloseWith runs release exactly once. The handler moves to closing
// before release runs, so concurrent writers already see IsClosed while
// release is still executing, and to closed once release returns. Safe
// to call repeatedly; every call after the first returns the same error
// the first call produced.
func (b *Base) CloseWith(release func() error) error {
	b.closeOnce.Do(func() {
		atomic.StoreInt32(&b.state, int32(closing))
		b.closeErr = release()
		atomic.StoreInt32(&b.state, int32(closed))
	})
	return b.closeErr
}

// pipelineResult is what Run produces: either a payload to write, a
// drop (nothing to write, no error), or an isolated processor/renderer
// error. buf is non-nil when payload aliases a pool-borrowed buffer
// still owned by Base; the caller must pass the result to Release once
// it has finished using payload (after the destination write, whether
// or not that write succeeded).
type pipelineResult struct {
	payload []byte
	dropped bool
	buf     *bytes.Buffer
}

// Release returns any pool-borrowed buffer backing result.payload.
// Variants call this after they're done with the payload, typically via
// defer right after Run returns.
func (b *Base) Release(result pipelineResult) {
	if result.buf != nil {
		renderer.PutBuffer(result.buf)
	}
}

// Run executes the pipeline up to but not including the actual write:
// clone, processors, render, newline framing, sink append. The caller
// (a variant's EmitSync/EmitAsync) is responsible for the write itself,
// performed while holding SyncMu or AsyncMu.
func (b *Base) Run(record *core.Record) (pipelineResult, error) {
	if b.IsClosed() {
		return pipelineResult{}, closedErr()
	}

	data := record.Data.Clone()

	data, outcome, err := processor.Chain(b.Processors, data)
	if err != nil {
		return pipelineResult{}, koerr.New(koerr.ProcessorError, koerr.CodeProcessorPanic, err).
			WithContext("logger", record.LoggerName)
	}
	if outcome == processor.Drop {
		b.stats.incDropped()
		return pipelineResult{dropped: true}, nil
	}

	payload, buf, err := b.render(data)
	if err != nil {
		return pipelineResult{}, koerr.New(koerr.RendererError, koerr.CodeRendererPanic, err).
			WithContext("logger", record.LoggerName)
	}
	if payload == nil {
		// renderer signaled drop
		b.stats.incDropped()
		return pipelineResult{dropped: true}, nil
	}

	if b.LineOriented {
		payload = renderer.EnsureTrailingNewline(payload)
	}

	b.sinkMu.RLock()
	s := b.sink
	b.sinkMu.RUnlock()
	if s != nil {
		s.Append(payload)
	}

	return pipelineResult{payload: payload, buf: buf}, nil
}

// render prefers the bufferRenderer fast path when the configured
// Renderer implements it: a single buffer borrowed from the shared pool
// carries the payload all the way to the destination write, instead of
// Render's own allocate-copy-and-discard. The returned buf is non-nil
// only in that case and must reach Release once the caller is done with
// payload; render itself returns any buffer it borrows but doesn't use
// (drop, error) before returning.
func (b *Base) render(data core.EventData) ([]byte, *bytes.Buffer, error) {
	if b.bufferRenderer != nil {
		buf := renderer.GetBuffer()
		outcome, err := b.bufferRenderer.RenderInto(data, buf)
		if err != nil {
			renderer.PutBuffer(buf)
			return nil, nil, err
		}
		if outcome == renderer.Drop {
			renderer.PutBuffer(buf)
			return nil, nil, nil
		}
		return buf.Bytes(), buf, nil
	}

	payload, outcome, err := b.Renderer.Render(data)
	if err != nil {
		return nil, nil, err
	}
	if outcome == renderer.Drop {
		return nil, nil, nil
	}
	return payload, nil, nil
}

// recordProcessed/recordIOError let variants update stats after the
// write step, which Base itself doesn't perform.
func (b *Base) recordProcessed() { b.stats.incProcessed() }
func (b *Base) recordIOError()   { b.stats.incIOErrors() }
