package core

import (
	"testing"
	"time"
)

func TestEventDataClone(t *testing.T) {
	orig := EventData{"event": "hello", "level": InfoLevel}
	cp := orig.Clone()
	cp["event"] = "changed"

	if orig["event"] != "hello" {
		t.Fatalf("clone mutation leaked into original: %v", orig["event"])
	}
}

func TestNewRecordClonesData(t *testing.T) {
	data := EventData{"event": "hello"}
	r := NewRecord("app", InfoLevel, time.Now(), data)
	defer r.Release()

	data["event"] = "mutated"
	if r.Data["event"] != "hello" {
		t.Fatalf("record shares backing map with caller: %v", r.Data["event"])
	}
	if r.ID == "" {
		t.Fatal("expected a generated record ID")
	}
}

func TestRecordReleaseRefCounting(t *testing.T) {
	r := NewRecord("app", InfoLevel, time.Now(), EventData{"event": "x"})
	r.SetRefCount(2)
	r.Release()
	if r.Data == nil {
		t.Fatal("record released before all refs dropped")
	}
	r.Release()
	if r.Data != nil {
		t.Fatal("record not released after all refs dropped")
	}
}

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		DebugLevel:    "DEBUG",
		InfoLevel:     "INFO",
		WarningLevel:  "WARNING",
		ErrorLevel:    "ERROR",
		CriticalLevel: "CRITICAL",
	}
	for lvl, want := range cases {
		if got := lvl.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", lvl, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("warning")
	if !ok || lvl != WarningLevel {
		t.Fatalf("ParseLevel(warning) = %v, %v", lvl, ok)
	}
	if _, ok := ParseLevel("bogus"); ok {
		t.Fatal("expected ParseLevel to reject an unknown level")
	}
}
