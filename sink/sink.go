// Package sink implements the in-memory capture buffer used by tests
// to observe what a handler actually wrote. A Sink is
// append-only and safe for concurrent use; attaching or detaching a
// sink from a handler is atomic with respect to emissions, which
// handler.Base guarantees by guarding its sink pointer with its own
// lock.
package sink

import "sync"

// Sink is an append-only, thread-safe capture buffer of rendered
// payloads. It exists only for tests: production handlers write to
// their real destination and, when a Sink is attached, additionally
// append the post-render payload here.
type Sink struct {
	mu     sync.Mutex
	events []string
}

// New creates an empty Sink.
func New() *Sink {
	return &Sink{}
}

// Append adds a payload to the sink. Called by a handler's pipeline
// after rendering, with the exact bytes written to the destination.
func (s *Sink) Append(payload []byte) {
	s.mu.Lock()
	s.events = append(s.events, string(payload))
	s.mu.Unlock()
}

// Events returns a snapshot copy of the captured payloads, in the
// order they were appended.
func (s *Sink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

// Clear empties the sink.
func (s *Sink) Clear() {
	s.mu.Lock()
	s.events = s.events[:0]
	s.mu.Unlock()
}

// Len returns the number of captured payloads.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
