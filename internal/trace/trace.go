// Package trace persists request-scoped structured events into JSONL
// files, one file per request.
package trace

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

var requestIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Event is a structured trace event persisted as JSON.
type Event struct {
	Timestamp string         `json:"timestamp"`
	RequestID string         `json:"request_id"`
	Source    string         `json:"source"`
	Step      string         `json:"step"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger appends events to per-request JSONL files. A nil Logger is a
// valid no-op.
type Logger struct {
	dir string
	mu  sync.Mutex
}

func defaultTraceDir() string {
	return filepath.Join("tmp", "motion_logs")
}

func New(dir string) *Logger {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		trimmed = defaultTraceDir()
	}
	_ = os.MkdirAll(trimmed, 0o755)
	return &Logger{dir: trimmed}
}

func sanitizeRequestID(id string) string {
	s := strings.TrimSpace(id)
	if s == "" {
		return "unknown"
	}
	s = requestIDSanitizer.ReplaceAllString(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

func (l *Logger) filePath(requestID string) string {
	return filepath.Join(l.dir, sanitizeRequestID(requestID)+".jsonl")
}

// Append writes one trace line for the request.
func (l *Logger) Append(requestID, source, step string, fields map[string]any) {
	if l == nil || strings.TrimSpace(requestID) == "" {
		return
	}
	event := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RequestID: strings.TrimSpace(requestID),
		Source:    strings.TrimSpace(source),
		Step:      strings.TrimSpace(step),
	}
	if len(fields) > 0 {
		event.Fields = fields
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	raw = append(raw, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = os.MkdirAll(l.dir, 0o755)
	f, err := os.OpenFile(l.filePath(requestID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(raw)
}

// Read returns all persisted events for a request.
func (l *Logger) Read(requestID string) ([]Event, error) {
	if l == nil {
		return nil, nil
	}
	f, err := os.Open(l.filePath(requestID))
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	out := make([]Event, 0, 64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan trace file: %w", err)
	}
	return out, nil
}

type ctxKeyRequestID struct{}

// WithRequestID tags the context with the inbound request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// RequestID returns the request id stored in the context, or "".
func RequestID(ctx context.Context) string {
	if v := ctx.Value(ctxKeyRequestID{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
