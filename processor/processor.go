// Package processor defines the pure event-data transform stage that
// runs before rendering. A Processor either returns
// transformed event data to continue the pipeline, or signals Drop to
// halt it for the current handler. Drop is a normal control outcome,
// never a generic error; an unexpected panic or error from a processor
// is isolated and reported as a koerr.ProcessorError instead.
package processor

import (
	"fmt"

	"github.com/ko-log/ko-log/core"
)

// Outcome is the control signal a Processor returns alongside
// (possibly transformed) event data.
type Outcome int

const (
	// Keep continues the pipeline with the returned event data.
	Keep Outcome = iota
	// Drop halts the pipeline for the current handler; no error, no
	// write, just a drop-counter increment.
	Drop
)

// Processor transforms event data, or signals that the event should be
// dropped for the handler currently running it. Implementations may
// mutate data in place and return the same reference, or return a new
// EventData value; callers always treat the returned value (when
// Outcome is Keep) as authoritative.
type Processor interface {
	Process(data core.EventData) (core.EventData, Outcome, error)
}

// Func adapts a plain function to the Processor interface.
type Func func(data core.EventData) (core.EventData, Outcome, error)

func (f Func) Process(data core.EventData) (core.EventData, Outcome, error) {
	return f(data)
}

// Chain runs processors in declared order. It
// stops and returns Drop as soon as any processor signals it, and
// returns the first error a processor raises; a panicking processor is
// recovered and reported the same way, as an error (callers must
// isolate this to the handler that owns the chain).
func Chain(processors []Processor, data core.EventData) (res core.EventData, resOutcome Outcome, resErr error) {
	defer func() {
		if r := recover(); r != nil {
			res, resOutcome, resErr = data, Keep, fmt.Errorf("processor panicked: %v", r)
		}
	}()
	for _, p := range processors {
		out, outcome, err := p.Process(data)
		if err != nil {
			return data, Keep, err
		}
		if outcome == Drop {
			return out, Drop, nil
		}
		data = out
	}
	return data, Keep, nil
}
