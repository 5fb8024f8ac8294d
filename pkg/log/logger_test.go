package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(&buf)))
	return l, &buf
}

func TestLevelGating(t *testing.T) {
	l, buf := newBufferLogger(WarnLevel, &TextFormatter{DisableTimestamp: true})
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN  shown") {
		t.Fatalf("warn missing: %q", out)
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	l, buf := newBufferLogger(DebugLevel, &TextFormatter{DisableTimestamp: true})
	l.With(Component("query")).Debug("query.done", Int("keys", 2), Str("subject", "S"))
	got := buf.String()
	want := "DEBUG query.done component=query keys=2 subject=S\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestJSONFormatterCarriesError(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	l.Error("query.failed", Err(errors.New("broken pipe")), Uint64("seq", 7))
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if m["error"] != "broken pipe" || m["level"] != "ERROR" || m["msg"] != "query.failed" {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestSetLevelPropagatesToChildren(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &TextFormatter{DisableTimestamp: true})
	child := l.WithComponent("executor")
	l.SetLevel(DebugLevel)
	child.Debug("worker.start")
	if !strings.Contains(buf.String(), "worker.start") {
		t.Fatalf("child did not observe level change: %q", buf.String())
	}
}

func TestApplyConfigRedacts(t *testing.T) {
	lg, err := ApplyConfig(&Config{Level: "info", Format: "text", Outputs: []string{"null"}, Redact: []string{"token"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var buf bytes.Buffer
	bl := lg.(*BaseLogger)
	bl.outputs = append(bl.outputs, NewWriterOutput(&buf))
	lg.Info("auth", Str("token", "secret"))
	if strings.Contains(buf.String(), "secret") || !strings.Contains(buf.String(), "[REDACTED]") {
		t.Fatalf("token not redacted: %q", buf.String())
	}
}

func TestApplyConfigRejectsUnknown(t *testing.T) {
	if _, err := ApplyConfig(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestContextFields(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &TextFormatter{DisableTimestamp: true})
	ctx := ContextWithRequestID(context.Background(), "r-1")
	l.WithContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "request_id=r-1") {
		t.Fatalf("missing request id: %q", buf.String())
	}
}
