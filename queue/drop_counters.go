package queue

import "sync"

// dropCounters tracks backpressure drops keyed by (logger name, policy
// reason). Guarded by its own mutex since it's written from both
// enqueue (caller goroutines) and read by callers wanting a snapshot.
type dropCounters struct {
	mu     sync.Mutex
	counts map[string]map[string]uint64
}

func newDropCounters() *dropCounters {
	return &dropCounters{counts: make(map[string]map[string]uint64)}
}

func (d *dropCounters) inc(loggerName, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	byReason, ok := d.counts[loggerName]
	if !ok {
		byReason = make(map[string]uint64)
		d.counts[loggerName] = byReason
	}
	byReason[reason]++
}

// Get returns the drop count for (loggerName, reason).
func (d *dropCounters) Get(loggerName, reason string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[loggerName][reason]
}

// Snapshot returns a deep copy of all drop counts.
func (d *dropCounters) Snapshot() map[string]map[string]uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]map[string]uint64, len(d.counts))
	for logger, byReason := range d.counts {
		cp := make(map[string]uint64, len(byReason))
		for reason, n := range byReason {
			cp[reason] = n
		}
		out[logger] = cp
	}
	return out
}
