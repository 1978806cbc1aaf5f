package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/ko-log/ko-log/core"
)

func TestTextRenderBasic(t *testing.T) {
	r := NewText("")
	data := core.EventData{
		core.KeyEvent:     "hello",
		core.KeyLevel:     core.InfoLevel,
		core.KeyTimestamp: time.Now(),
	}
	payload, outcome, err := r.Render(data)
	if err != nil || outcome != Keep {
		t.Fatalf("unexpected: %v %v", outcome, err)
	}
	s := string(payload)
	if !strings.Contains(s, "[INFO]") || !strings.Contains(s, "hello") {
		t.Fatalf("unexpected payload: %q", s)
	}
	if !strings.HasSuffix(s, "\n") {
		t.Fatal("expected trailing newline")
	}
}

func TestTextRenderContextSorted(t *testing.T) {
	r := NewText("")
	data := core.EventData{
		core.KeyEvent: "hi",
		core.KeyLevel: core.InfoLevel,
		core.KeyContext: map[string]any{
			"b": 2,
			"a": 1,
		},
	}
	payload, _, _ := r.Render(data)
	s := string(payload)
	if strings.Index(s, "a=1") > strings.Index(s, "b=2") {
		t.Fatalf("expected sorted context keys, got %q", s)
	}
}

func TestJSONRenderRoundTrips(t *testing.T) {
	r := NewJSON("")
	data := core.EventData{
		core.KeyEvent: "hi",
		core.KeyLevel: core.ErrorLevel,
	}
	payload, _, err := r.Render(data)
	if err != nil {
		t.Fatal(err)
	}
	s := string(payload)
	if !strings.Contains(s, `"event":"hi"`) {
		t.Fatalf("expected event field, got %q", s)
	}
	if !strings.Contains(s, `"level":"ERROR"`) {
		t.Fatalf("expected level rendered as string, got %q", s)
	}
}

func TestTextRenderIntoMatchesRender(t *testing.T) {
	r := NewText("")
	data := core.EventData{
		core.KeyEvent: "hello",
		core.KeyLevel: core.InfoLevel,
	}
	want, _, _ := r.Render(data)

	buf := GetBuffer()
	defer PutBuffer(buf)
	outcome, err := r.RenderInto(data, buf)
	if err != nil || outcome != Keep {
		t.Fatalf("unexpected: %v %v", outcome, err)
	}
	if buf.String() != string(want) {
		t.Fatalf("RenderInto diverged from Render: %q vs %q", buf.String(), want)
	}
}

func TestJSONRenderIntoMatchesRender(t *testing.T) {
	r := NewJSON("")
	data := core.EventData{
		core.KeyEvent: "hi",
		core.KeyLevel: core.ErrorLevel,
	}
	want, _, _ := r.Render(data)

	buf := GetBuffer()
	defer PutBuffer(buf)
	outcome, err := r.RenderInto(data, buf)
	if err != nil || outcome != Keep {
		t.Fatalf("unexpected: %v %v", outcome, err)
	}
	if buf.String() != string(want) {
		t.Fatalf("RenderInto diverged from Render: %q vs %q", buf.String(), want)
	}
}

func TestEnsureTrailingNewline(t *testing.T) {
	if got := EnsureTrailingNewline([]byte("x")); string(got) != "x\n" {
		t.Fatalf("expected newline appended, got %q", got)
	}
	if got := EnsureTrailingNewline([]byte("x\n")); string(got) != "x\n" {
		t.Fatalf("expected no double newline, got %q", got)
	}
}
