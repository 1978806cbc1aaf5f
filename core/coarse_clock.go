package core

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

var (
	coarseClockOnce sync.Once
	coarseNow       unsafe.Pointer // *time.Time
)

// StartCoarseClock starts the background goroutine that caches
// time.Now() every 500µs. It is safe to call multiple times; the
// goroutine is started exactly once and runs for the lifetime of the
// process, which is fine since a queue manager typically spans the
// whole application lifetime.
//
// A queue manager configured with UseCoarseClock calls CoarseNow
// instead of time.Now() when stamping records, trading microsecond
// timestamp precision for one fewer syscall per log call.
func StartCoarseClock() {
	coarseClockOnce.Do(func() {
		t := time.Now()
		atomic.StorePointer(&coarseNow, unsafe.Pointer(&t))
		go func() {
			ticker := time.NewTicker(500 * time.Microsecond)
			for range ticker.C {
				t := time.Now()
				atomic.StorePointer(&coarseNow, unsafe.Pointer(&t))
			}
		}()
	})
}

// CoarseNow returns the most recently cached time.Time value.
// StartCoarseClock must have been called first; if it has not,
// CoarseNow falls back to time.Now() for that single call.
func CoarseNow() time.Time {
	p := atomic.LoadPointer(&coarseNow)
	if p == nil {
		return time.Now()
	}
	return *(*time.Time)(p)
}
