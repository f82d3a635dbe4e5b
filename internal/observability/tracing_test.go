package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestStartSpanMintsTraceIDOnFirstCall(t *testing.T) {
	logger := NewLogger(LogConfig{Output: &bytes.Buffer{}})

	ctx, span := StartSpan(context.Background(), logger, "probe")
	if span.TraceID == "" {
		t.Fatal("expected a non-empty trace ID")
	}
	if span.SpanID == "" {
		t.Fatal("expected a non-empty span ID")
	}
	if span.ParentID != "" {
		t.Errorf("root span should have no parent, got %q", span.ParentID)
	}
	if got := GetTraceID(ctx); got != span.TraceID {
		t.Errorf("GetTraceID(ctx) = %q, want %q", got, span.TraceID)
	}
	if got := GetSpanID(ctx); got != span.SpanID {
		t.Errorf("GetSpanID(ctx) = %q, want %q", got, span.SpanID)
	}
}

func TestStartSpanNestsUnderExistingTrace(t *testing.T) {
	logger := NewLogger(LogConfig{Output: &bytes.Buffer{}})

	ctx, parent := StartSpan(context.Background(), logger, "outer")
	_, child := StartSpan(ctx, logger, "inner")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace ID = %q, want %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent ID = %q, want %q", child.ParentID, parent.SpanID)
	}
	if child.SpanID == parent.SpanID {
		t.Error("child span ID should differ from parent")
	}
}

func TestSpanEndLogsErrorWhenPresent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf, Level: "debug"})

	_, span := StartSpan(context.Background(), logger, "risky")
	span.End(errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Errorf("expected log output to contain error, got %s", buf.String())
	}
}

func TestGetTraceIDEmptyWithoutSpan(t *testing.T) {
	if got := GetTraceID(context.Background()); got != "" {
		t.Errorf("GetTraceID on bare context = %q, want empty", got)
	}
	if got := GetSpanID(context.Background()); got != "" {
		t.Errorf("GetSpanID on bare context = %q, want empty", got)
	}
}

func TestAddTraceIDOverridesContext(t *testing.T) {
	ctx := AddTraceID(context.Background(), "fixed-id")
	if got := GetTraceID(ctx); got != "fixed-id" {
		t.Errorf("GetTraceID = %q, want fixed-id", got)
	}
}
