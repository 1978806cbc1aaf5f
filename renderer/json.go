package renderer

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/ko-log/ko-log/core"
)

// JSON renders event data as a single-line JSON object. Unlike Text,
// which hand-builds its line for a fixed set of fields, JSON must
// serialize an arbitrary map (EventData plus a nested,
// arbitrarily-shaped context), so it leans on encoding/json rather
// than hand-rolled escaping (see DESIGN.md).
type JSON struct {
	TimestampFormat string
}

// NewJSON creates a JSON renderer, defaulting TimestampFormat to
// time.RFC3339Nano when left empty.
func NewJSON(timestampFormat string) *JSON {
	if timestampFormat == "" {
		timestampFormat = time.RFC3339Nano
	}
	return &JSON{TimestampFormat: timestampFormat}
}

func (j *JSON) Render(data core.EventData) ([]byte, Outcome, error) {
	out, err := j.marshal(data)
	if err != nil {
		return nil, Keep, err
	}
	return EnsureTrailingNewline(out), Keep, nil
}

// RenderInto implements BufferRenderer: it marshals with encoding/json
// and copies the result, with its trailing newline, into the
// caller-owned buffer.
func (j *JSON) RenderInto(data core.EventData, buf *bytes.Buffer) (Outcome, error) {
	out, err := j.marshal(data)
	if err != nil {
		return Keep, err
	}
	buf.Write(EnsureTrailingNewline(out))
	return Keep, nil
}

func (j *JSON) marshal(data core.EventData) ([]byte, error) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case time.Time:
			out[k] = val.Format(j.TimestampFormat)
		case core.Level:
			out[k] = val.String()
		case core.ExceptionInfo:
			out[k] = val
		default:
			out[k] = v
		}
	}
	return json.Marshal(out)
}
