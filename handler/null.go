package handler

import (
	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/processor"
	"github.com/ko-log/ko-log/renderer"
)

// Null runs the full pipeline — processors, renderer, sink — but its
// write step is a no-op. It exists so processors and attached sinks can
// be exercised in tests without touching any real destination.
type Null struct {
	Base
}

// NewNull creates a Null handler. A nil renderer defaults to Text,
// matching the other variants' defaulting behavior.
func NewNull(r renderer.Renderer, procs ...processor.Processor) *Null {
	if r == nil {
		r = renderer.NewText("")
	}
	return &Null{Base: NewBase(r, procs, true)}
}

func (h *Null) EmitSync(record *core.Record) error {
	h.SyncMu.Lock()
	defer h.SyncMu.Unlock()
	return h.emit(record)
}

func (h *Null) EmitAsync(record *core.Record) error {
	h.AsyncMu.Lock()
	defer h.AsyncMu.Unlock()
	return h.emit(record)
}

func (h *Null) emit(record *core.Record) error {
	result, err := h.Run(record)
	if err != nil {
		h.recordIOError()
		return err
	}
	defer h.Release(result)
	if result.dropped {
		return nil
	}
	h.MarkOpen()
	h.recordProcessed()
	return nil
}

func (h *Null) Flush() error { return nil }

func (h *Null) Close() error {
	return h.CloseWith(func() error { return nil })
}
