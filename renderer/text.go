package renderer

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/ko-log/ko-log/core"
)

// Text renders event data as a single human-readable line:
//
//	<timestamp> [<LEVEL>] <event> key=value key=value ...
//
// Extra top-level keys, then context entries, are appended, each group
// sorted by key for deterministic output.
type Text struct {
	TimestampFormat string
	IncludeCaller   bool
}

// NewText creates a Text renderer, defaulting TimestampFormat to
// time.RFC3339 when left empty.
func NewText(timestampFormat string) *Text {
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}
	return &Text{TimestampFormat: timestampFormat}
}

var levelBrackets = map[core.Level]string{
	core.DebugLevel:    " [DEBUG] ",
	core.InfoLevel:     " [INFO] ",
	core.WarningLevel:  " [WARNING] ",
	core.ErrorLevel:    " [ERROR] ",
	core.CriticalLevel: " [CRITICAL] ",
}

func (t *Text) Render(data core.EventData) ([]byte, Outcome, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := t.renderInto(data, buf); err != nil {
		return nil, Keep, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, Keep, nil
}

// RenderInto implements BufferRenderer: it writes directly into a
// caller-owned buffer, letting the caller (handler.Base) reuse one pool
// borrow across the whole pipeline run instead of Render's own
// get/copy/put round trip.
func (t *Text) RenderInto(data core.EventData, buf *bytes.Buffer) (Outcome, error) {
	if err := t.renderInto(data, buf); err != nil {
		return Keep, err
	}
	return Keep, nil
}

func (t *Text) renderInto(data core.EventData, buf *bytes.Buffer) error {
	ts, _ := data[core.KeyTimestamp].(time.Time)
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.Write(ts.AppendFormat(buf.AvailableBuffer(), t.TimestampFormat))

	lvl, _ := data[core.KeyLevel].(core.Level)
	if b, ok := levelBrackets[lvl]; ok {
		buf.WriteString(b)
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	if t.IncludeCaller {
		if file, ok := data[core.KeyFilename].(string); ok && file != "" {
			line, _ := data[core.KeyLineno].(int)
			fmt.Fprintf(buf, "[%s:%d] ", file, line)
		}
	}

	if msg, ok := data[core.KeyEvent].(string); ok {
		buf.WriteString(msg)
	}

	for _, k := range sortedExtraKeys(data) {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteByte('=')
		fmt.Fprintf(buf, "%v", data[k])
	}

	if ctx, ok := data[core.KeyContext].(map[string]any); ok && len(ctx) > 0 {
		keys := make([]string, 0, len(ctx))
		for k := range ctx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf.WriteByte(' ')
			buf.WriteString(k)
			buf.WriteByte('=')
			fmt.Fprintf(buf, "%v", ctx[k])
		}
	}

	if exc, ok := data[core.KeyExcInfo].(core.ExceptionInfo); ok && exc.Type != "" {
		fmt.Fprintf(buf, " exc_info=%s: %s", exc.Type, exc.Message)
	}

	buf.WriteByte('\n')
	return nil
}

// reservedKeys are never rendered as extra key=value pairs. Timestamp,
// level and message have a dedicated place in the line; context and
// exc_info are rendered separately; filename and lineno appear only
// when IncludeCaller is set; name, funcName, module and pathname are
// not rendered at all.
var reservedKeys = map[string]bool{
	core.KeyEvent: true, core.KeyLevel: true, core.KeyName: true,
	core.KeyTimestamp: true, core.KeyContext: true,
	core.KeyFilename: true, core.KeyLineno: true, core.KeyFuncName: true,
	core.KeyModule: true, core.KeyPathname: true, core.KeyExcInfo: true,
}

func sortedExtraKeys(data core.EventData) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if reservedKeys[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
