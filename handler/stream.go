package handler

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/processor"
	"github.com/ko-log/ko-log/renderer"
)

// Stream writes to standard output or standard error, chosen via
// UseStderr. Sync writes use the underlying writer's native Write;
// async writes reuse the same writer, since Go's os.File.Write is
// itself a blocking syscall with no non-blocking console-I/O variant to
// fall back from — tests must not assume the async path behaves any
// differently from the sync one on this destination.
//
// When Color is enabled and the destination is a terminal (detected
// via go-isatty), writes go through go-colorable so ANSI sequences
// render correctly on Windows consoles too; on a non-terminal
// destination (redirected to a file, a pipe, a test buffer) Color has
// no effect and the raw writer is used unwrapped.
type Stream struct {
	Base
	w io.Writer
}

// StreamConfig configures a Stream handler.
type StreamConfig struct {
	// UseStderr selects os.Stderr instead of os.Stdout. Ignored if
	// Writer is set.
	UseStderr bool
	// Writer overrides the destination entirely (tests pass a
	// bytes.Buffer here).
	Writer io.Writer
	// Color enables ANSI color passthrough via go-colorable when the
	// destination is a terminal.
	Color      bool
	Renderer   renderer.Renderer
	Processors []processor.Processor
}

// NewStream creates a Stream handler.
func NewStream(cfg StreamConfig) *Stream {
	w := cfg.Writer
	if w == nil {
		if cfg.UseStderr {
			w = os.Stderr
		} else {
			w = os.Stdout
		}
		if cfg.Color {
			if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				w = colorable.NewColorable(f)
			}
		}
	}

	r := cfg.Renderer
	if r == nil {
		r = renderer.NewText("")
	}

	return &Stream{
		Base: NewBase(r, cfg.Processors, true),
		w:    w,
	}
}

func (h *Stream) EmitSync(record *core.Record) error {
	h.SyncMu.Lock()
	defer h.SyncMu.Unlock()
	return h.emit(record)
}

func (h *Stream) EmitAsync(record *core.Record) error {
	h.AsyncMu.Lock()
	defer h.AsyncMu.Unlock()
	return h.emit(record)
}

func (h *Stream) emit(record *core.Record) error {
	result, err := h.Run(record)
	if err != nil {
		h.recordIOError()
		return err
	}
	defer h.Release(result)
	if result.dropped {
		return nil
	}
	if _, err := h.w.Write(result.payload); err != nil {
		h.recordIOError()
		return wrapIOErr(err)
	}
	h.MarkOpen()
	h.recordProcessed()
	return nil
}

func (h *Stream) Flush() error {
	if f, ok := h.w.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

func (h *Stream) Close() error {
	return h.CloseWith(func() error { return nil })
}
