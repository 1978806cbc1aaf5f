package handler

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/processor"
	"github.com/ko-log/ko-log/renderer"
)

// FileMode selects how the destination file is opened on first write.
type FileMode int

const (
	// Truncate opens the file fresh, equivalent to Python's "wb" mode.
	Truncate FileMode = iota
	// Append opens (or creates) the file and appends, equivalent to
	// Python's "ab" mode.
	Append
)

// FileConfig configures a File handler.
type FileConfig struct {
	Filename string
	Mode     FileMode
	// Encoding is only validated, not stored: Ko-Log always writes UTF-8
	// and rejects any other value at construction time.
	Encoding string
	// OverrideExisting, when false and Mode is Truncate, makes the
	// lazy open fail if the file already exists.
	OverrideExisting bool
	Renderer         renderer.Renderer
	Processors       []processor.Processor
}

// File writes rendered payloads to a single file, opened lazily on the
// first successful pipeline run.
type File struct {
	Base

	filename         string
	mode             FileMode
	overrideExisting bool

	file      *os.File
	bufWriter *bufio.Writer

	currentSize int64
}

// NewFile validates cfg and returns an unopened File handler; no
// filesystem access happens until the first write.
func NewFile(cfg FileConfig) (*File, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("ko-log: filename is required")
	}
	if cfg.Encoding != "" && cfg.Encoding != "utf-8" && cfg.Encoding != "UTF-8" {
		return nil, fmt.Errorf("ko-log: unsupported encoding %q, only utf-8 is supported", cfg.Encoding)
	}
	r := cfg.Renderer
	if r == nil {
		r = renderer.NewText("")
	}

	return &File{
		Base:             NewBase(r, cfg.Processors, true),
		filename:         cfg.Filename,
		mode:             cfg.Mode,
		overrideExisting: cfg.OverrideExisting,
	}, nil
}

// ensureOpen performs the lazy open. Must be called while holding
// whichever of SyncMu/AsyncMu the caller owns.
func (h *File) ensureOpen() error {
	if h.file != nil {
		return nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	switch h.mode {
	case Truncate:
		if !h.overrideExisting {
			if _, err := os.Stat(h.filename); err == nil {
				return wrapIOErr(fmt.Errorf("ko-log: %s exists and override_existing is false", h.filename))
			}
		}
		flags |= os.O_TRUNC
	case Append:
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(h.filename, flags, 0644)
	if err != nil {
		return wrapIOErr(err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return wrapIOErr(err)
	}

	h.file = f
	h.bufWriter = bufio.NewWriterSize(f, 4096)
	h.currentSize = info.Size()
	return nil
}

func (h *File) EmitSync(record *core.Record) error {
	h.SyncMu.Lock()
	defer h.SyncMu.Unlock()
	return h.emit(record)
}

func (h *File) EmitAsync(record *core.Record) error {
	h.AsyncMu.Lock()
	defer h.AsyncMu.Unlock()
	return h.emit(record)
}

func (h *File) emit(record *core.Record) error {
	result, err := h.Run(record)
	if err != nil {
		h.recordIOError()
		return err
	}
	defer h.Release(result)
	if result.dropped {
		return nil
	}

	if err := h.ensureOpen(); err != nil {
		h.recordIOError()
		return err
	}

	n, err := h.bufWriter.Write(result.payload)
	h.currentSize += int64(n)
	if err != nil {
		h.recordIOError()
		return wrapIOErr(err)
	}

	h.MarkOpen()
	h.recordProcessed()
	return nil
}

func (h *File) Flush() error {
	h.SyncMu.Lock()
	defer h.SyncMu.Unlock()
	return h.flushLocked()
}

func (h *File) flushLocked() error {
	if h.bufWriter == nil {
		return nil
	}
	if err := h.bufWriter.Flush(); err != nil {
		return wrapIOErr(err)
	}
	return nil
}

func (h *File) Close() error {
	return h.CloseWith(func() error {
		h.SyncMu.Lock()
		defer h.SyncMu.Unlock()
		if h.file == nil {
			return nil
		}
		flushErr := h.flushLocked()
		closeErr := h.file.Close()
		if flushErr != nil {
			return flushErr
		}
		if closeErr != nil {
			return wrapIOErr(closeErr)
		}
		return nil
	})
}
