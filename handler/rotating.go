package handler

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/processor"
	"github.com/ko-log/ko-log/renderer"
)

// RotatingFileConfig configures a RotatingFile handler. MaxBytes==0
// disables size-triggered rotation; RotationInterval==0 disables the
// time trigger.
type RotatingFileConfig struct {
	Filename         string
	Encoding         string
	OverrideExisting bool
	MaxBytes         int64
	BackupCount      int
	RotationInterval time.Duration
	Renderer         renderer.Renderer
	Processors       []processor.Processor
}

// RotatingFile extends the plain file handler with size- and
// time-triggered rotation. Rotation runs entirely under the handler's
// write lock so no write is ever interleaved with the rename/open
// sequence.
type RotatingFile struct {
	Base

	filename         string
	overrideExisting bool
	maxBytes         int64
	backupCount      int
	rotationInterval time.Duration

	file      *os.File
	bufWriter *bufio.Writer

	currentSize    int64
	lastRotateTime time.Time
}

// NewRotatingFile validates cfg and returns an unopened handler.
func NewRotatingFile(cfg RotatingFileConfig) (*RotatingFile, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("ko-log: filename is required")
	}
	if cfg.Encoding != "" && cfg.Encoding != "utf-8" && cfg.Encoding != "UTF-8" {
		return nil, fmt.Errorf("ko-log: unsupported encoding %q, only utf-8 is supported", cfg.Encoding)
	}
	if cfg.BackupCount < 0 {
		return nil, fmt.Errorf("ko-log: backup count must be >= 0")
	}
	r := cfg.Renderer
	if r == nil {
		r = renderer.NewText("")
	}

	return &RotatingFile{
		Base:             NewBase(r, cfg.Processors, true),
		filename:         cfg.Filename,
		overrideExisting: cfg.OverrideExisting,
		maxBytes:         cfg.MaxBytes,
		backupCount:      cfg.BackupCount,
		rotationInterval: cfg.RotationInterval,
		lastRotateTime:   time.Now(),
	}, nil
}

func (h *RotatingFile) ensureOpen() error {
	if h.file != nil {
		return nil
	}
	f, err := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
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
	if h.lastRotateTime.IsZero() {
		h.lastRotateTime = time.Now()
	}
	return nil
}

// needsRotation implements an exact boundary rule: a write that would
// make size equal maxBytes does NOT rotate; strictly greater does.
func (h *RotatingFile) needsRotation(payloadLen int) bool {
	if h.maxBytes > 0 && h.currentSize+int64(payloadLen) > h.maxBytes {
		return true
	}
	if h.rotationInterval > 0 && time.Since(h.lastRotateTime) >= h.rotationInterval {
		return true
	}
	return false
}

// rotate performs the rename chain, from highest index down to avoid
// overwriting, then opens a fresh file. If any rename fails, it
// aborts, restores the original handle by
// reopening filename in append mode, and returns a handler I/O error;
// the caller retries the pending write once against the restored
// handle.
func (h *RotatingFile) rotate() error {
	if err := h.bufWriter.Flush(); err != nil {
		return wrapIOErr(err)
	}
	if err := h.file.Close(); err != nil {
		return wrapIOErr(err)
	}
	h.file = nil

	if h.backupCount > 0 {
		if err := h.renameChain(); err != nil {
			// Restore by reopening the original file in append mode.
			f, reopenErr := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if reopenErr != nil {
				return wrapIOErr(fmt.Errorf("rotation failed: %w; reopen failed: %v", err, reopenErr))
			}
			h.file = f
			h.bufWriter = bufio.NewWriterSize(f, 4096)
			if info, statErr := f.Stat(); statErr == nil {
				h.currentSize = info.Size()
			}
			return wrapIOErr(err)
		}
	} else {
		// backup_count == 0: truncate, no backups produced.
		if err := os.Remove(h.filename); err != nil && !os.IsNotExist(err) {
			return wrapIOErr(err)
		}
	}

	f, err := os.OpenFile(h.filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return wrapIOErr(err)
	}
	h.file = f
	h.bufWriter = bufio.NewWriterSize(f, 4096)
	h.currentSize = 0
	h.lastRotateTime = time.Now()
	return nil
}

func (h *RotatingFile) renameChain() error {
	// filename.N is always removed first (it would otherwise be
	// clobbered, or if backupCount shrank, orphaned).
	nth := fmt.Sprintf("%s.%d", h.filename, h.backupCount)
	if err := os.Remove(nth); err != nil && !os.IsNotExist(err) {
		return err
	}

	for k := h.backupCount - 1; k >= 1; k-- {
		src := fmt.Sprintf("%s.%d", h.filename, k)
		dst := fmt.Sprintf("%s.%d", h.filename, k+1)
		if _, err := os.Stat(src); err != nil {
			continue // no such generation yet; nothing to shift
		}
		if err := os.Rename(src, dst); err != nil {
			return err
		}
	}

	return os.Rename(h.filename, h.filename+".1")
}

func (h *RotatingFile) EmitSync(record *core.Record) error {
	h.SyncMu.Lock()
	defer h.SyncMu.Unlock()
	return h.emit(record)
}

func (h *RotatingFile) EmitAsync(record *core.Record) error {
	h.AsyncMu.Lock()
	defer h.AsyncMu.Unlock()
	return h.emit(record)
}

func (h *RotatingFile) emit(record *core.Record) error {
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

	if h.needsRotation(len(result.payload)) {
		if err := h.rotate(); err != nil {
			h.recordIOError()
			// The pending write is retried once against the restored
			// handle.
			if h.file == nil {
				return err
			}
			if writeErr := h.write(result.payload); writeErr != nil {
				return writeErr
			}
			h.MarkOpen()
			h.recordProcessed()
			return err
		}
	}

	if err := h.write(result.payload); err != nil {
		h.recordIOError()
		return err
	}
	h.MarkOpen()
	h.recordProcessed()
	return nil
}

func (h *RotatingFile) write(payload []byte) error {
	n, err := h.bufWriter.Write(payload)
	h.currentSize += int64(n)
	if err != nil {
		return wrapIOErr(err)
	}
	return nil
}

func (h *RotatingFile) Flush() error {
	h.SyncMu.Lock()
	defer h.SyncMu.Unlock()
	if h.bufWriter == nil {
		return nil
	}
	if err := h.bufWriter.Flush(); err != nil {
		return wrapIOErr(err)
	}
	return nil
}

func (h *RotatingFile) Close() error {
	return h.CloseWith(func() error {
		h.SyncMu.Lock()
		defer h.SyncMu.Unlock()
		if h.file == nil {
			return nil
		}
		var flushErr error
		if h.bufWriter != nil {
			flushErr = h.bufWriter.Flush()
		}
		closeErr := h.file.Close()
		if flushErr != nil {
			return wrapIOErr(flushErr)
		}
		if closeErr != nil {
			return wrapIOErr(closeErr)
		}
		return nil
	})
}
