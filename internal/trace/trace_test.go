package trace

import (
	"context"
	"path/filepath"
	"testing"
)

func TestAppendAndRead(t *testing.T) {
	l := New(t.TempDir())
	l.Append("req-1", "pipeline", "validating", map[string]any{"topic": "trygghet"})
	l.Append("req-1", "pipeline", "generating", nil)
	l.Append("req-2", "pipeline", "validating", nil)

	events, err := l.Read("req-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Step != "validating" || events[1].Step != "generating" {
		t.Fatalf("unexpected order: %+v", events)
	}
	if events[0].Fields["topic"] != "trygghet" {
		t.Fatalf("fields lost: %+v", events[0])
	}
}

func TestRead_UnknownRequest(t *testing.T) {
	l := New(t.TempDir())
	events, err := l.Read("missing")
	if err != nil || len(events) != 0 {
		t.Fatalf("got %v, %v; want empty slice", events, err)
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Append("req", "pipeline", "validating", nil)
	if events, err := l.Read("req"); err != nil || events != nil {
		t.Fatalf("nil logger Read = %v, %v", events, err)
	}
}

func TestRequestIDSanitized(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	l.Append("../../etc/passwd", "pipeline", "validating", nil)

	matches, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("files = %v, want exactly one inside the trace dir", matches)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" {
		t.Fatal("empty context must yield empty id")
	}
	ctx = WithRequestID(ctx, "abc-123")
	if RequestID(ctx) != "abc-123" {
		t.Fatalf("got %q", RequestID(ctx))
	}
}
