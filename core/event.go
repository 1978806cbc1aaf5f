package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Well-known EventData keys, assembled by the logger before a Record is
// built.
const (
	KeyEvent     = "event"
	KeyLevel     = "level"
	KeyName      = "name"
	KeyTimestamp = "timestamp"
	KeyContext   = "context"

	KeyFilename = "filename"
	KeyLineno   = "lineno"
	KeyFuncName = "funcName"
	KeyModule   = "module"
	KeyPathname = "pathname"
	KeyExcInfo  = "exc_info"
)

// EventData is the mutable mapping assembled by a logger and consumed by
// processors and renderers. It is frozen (copied) into a Record once the
// logger-level processor pipeline has run.
type EventData map[string]any

// Clone returns a shallow copy of the event data. Handlers call this
// defensively before running their own processor pipeline so that one
// handler's mutations never leak into a sibling handler's view of the
// same record.
func (e EventData) Clone() EventData {
	if e == nil {
		return nil
	}
	cp := make(EventData, len(e))
	for k, v := range e {
		cp[k] = v
	}
	return cp
}

// Record is the immutable envelope dispatched through the queue. It is
// constructed once per log call and never mutated after it leaves the
// logger; it is destroyed (returned to the pool) once the last handler
// that was routed to it has finished or dropped it.
type Record struct {
	ID         string
	LoggerName string
	Level      Level
	Timestamp  time.Time
	Data       EventData

	// refs counts the handlers still holding this record; Release is a
	// no-op until it reaches zero. Set by the caller that fans a record
	// out to N handlers; defaults to 1 for single-target dispatch.
	refs int32
}

var recordPool = sync.Pool{
	New: func() any { return &Record{} },
}

// NewRecord builds a Record from assembled event data. data is cloned so
// the caller's map can keep being mutated (or reused) without affecting
// the record that has already entered the queue.
func NewRecord(loggerName string, level Level, ts time.Time, data EventData) *Record {
	r := recordPool.Get().(*Record)
	r.ID = uuid.NewString()
	r.LoggerName = loggerName
	r.Level = level
	r.Timestamp = ts
	r.Data = data.Clone()
	r.refs = 1
	return r
}

// SetRefCount sets how many independent handler pipelines will observe
// this record before it is eligible for recycling. The queue manager
// calls this once per dispatch, right after resolving the handler list,
// so each handler can release its own reference as soon as its own
// pipeline run finishes instead of all of them sharing one release at
// the end of the batch.
func (r *Record) SetRefCount(n int) {
	r.refs = int32(n)
}

// Release decrements the reference count and returns the record to the
// pool once every holder has released it. The count is a plain,
// non-atomic counter, so calls must not run concurrently; the queue
// manager makes every Release call for a record from one goroutine.
func (r *Record) Release() {
	if r == nil {
		return
	}
	r.refs--
	if r.refs > 0 {
		return
	}
	r.Data = nil
	r.ID = ""
	recordPool.Put(r)
}
