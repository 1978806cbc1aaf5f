// Package handler implements the abstract handler contract and its
// built-in variants: Null, Stream, File and RotatingFile. Every variant
// shares one pipeline implementation (Base) so the
// processor→render→sink→write sequence, the sync/async lock pair, and
// the unopened→open→closing→closed lifecycle are written once instead
// of duplicated per destination.
package handler

import "github.com/ko-log/ko-log/core"

// Handler owns a destination, its own processors and renderer, and
// writes synchronously or asynchronously. A failing handler must never
// affect siblings; the queue manager is responsible for catching
// errors at this boundary, not the handler itself.
type Handler interface {
	// EmitSync runs the handler's pipeline and writes synchronously,
	// holding the handler's sync lock for the duration of the write.
	EmitSync(record *core.Record) error

	// EmitAsync runs the same pipeline using the async write path and
	// async lock. Called only from the queue manager's single worker
	// goroutine.
	EmitAsync(record *core.Record) error

	// Flush forces a durable write of any buffered output. Idempotent.
	Flush() error

	// Close transitions the handler to closed and releases its
	// resources. Safe to call twice; the second call is a no-op.
	Close() error
}

// Identifiable is implemented by handlers that can name themselves for
// composite-error reporting. Handlers that don't implement it are
// identified by their Go type name and address instead (see
// queue.handlerID).
type Identifiable interface {
	ID() string
}
