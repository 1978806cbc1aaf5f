// Package renderer converts event data into a formatted payload.
// A Renderer is pure with respect to event data and may
// signal Drop with the same two-outcome control flow processors use;
// an unexpected error is isolated to the owning handler and reported as
// a koerr.RendererError, never conflated with a drop.
package renderer

import (
	"bytes"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/processor"
)

// Outcome reuses processor.Outcome: Keep or Drop.
type Outcome = processor.Outcome

const (
	Keep = processor.Keep
	Drop = processor.Drop
)

// Renderer turns event data into a payload. Implementations must be
// pure: no mutation of data, no side effects beyond producing bytes.
type Renderer interface {
	Render(data core.EventData) (payload []byte, outcome Outcome, err error)
}

// BufferRenderer is an optional interface a Renderer can implement to
// render into a caller-owned buffer instead of allocating and returning
// its own []byte. handler.Base probes for this at construction time and,
// when present, renders into a single pool-borrowed buffer it holds for
// the rest of the pipeline run, instead of calling Render and discarding
// the renderer's own internal copy.
type BufferRenderer interface {
	RenderInto(data core.EventData, buf *bytes.Buffer) (outcome Outcome, err error)
}

// EnsureTrailingNewline appends a single '\n' to payload if it doesn't
// already end in one.
func EnsureTrailingNewline(payload []byte) []byte {
	if len(payload) == 0 || payload[len(payload)-1] != '\n' {
		return append(payload, '\n')
	}
	return payload
}
