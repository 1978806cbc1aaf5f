// Package queue ties core, processor, renderer, sink and handler
// together into the dispatch layer: a routing table from logger name
// to handlers, a bounded channel with pluggable backpressure, a single
// background worker, and a drain-on-shutdown protocol.
package queue
