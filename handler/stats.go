package handler

import "sync/atomic"

// Stats tracks per-handler counters (atomic dropped/processed
// counters), narrowed to what a handler itself is responsible for: the
// queue manager's backpressure drop counters live in the queue package
// instead, keyed by (logger name, policy reason).
type Stats struct {
	processed uint64
	dropped   uint64
	ioErrors  uint64
}

// NewStats creates a zeroed Stats.
func NewStats() *Stats { return &Stats{} }

func (s *Stats) incProcessed() { atomic.AddUint64(&s.processed, 1) }
func (s *Stats) incDropped()   { atomic.AddUint64(&s.dropped, 1) }
func (s *Stats) incIOErrors()  { atomic.AddUint64(&s.ioErrors, 1) }

// Snapshot is a point-in-time copy of a handler's counters.
type Snapshot struct {
	Processed uint64
	Dropped   uint64
	IOErrors  uint64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Processed: atomic.LoadUint64(&s.processed),
		Dropped:   atomic.LoadUint64(&s.dropped),
		IOErrors:  atomic.LoadUint64(&s.ioErrors),
	}
}
