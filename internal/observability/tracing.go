package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Additional context keys for lightweight span correlation.
const (
	// TraceIDKey is the context key for the trace (run) ID.
	TraceIDKey ContextKey = "trace_id"

	// SpanIDKey is the context key for the active span ID.
	SpanIDKey ContextKey = "span_id"
)

// Span is a single named unit of work within a trace. It carries no
// exporter and no sampling decision; it exists to give log lines and
// recorded events a trace_id/span_id pair to correlate on, the way a
// full tracing SDK would, without the collector/exporter machinery
// that implies.
type Span struct {
	Name      string
	TraceID   string
	SpanID    string
	ParentID  string
	StartTime time.Time
	logger    *Logger
}

// StartSpan begins a span, generating a span ID and inheriting the
// trace ID already on ctx (or minting one if this is the first span).
// The returned context carries both IDs so nested StartSpan calls and
// EventRecorder.Record pick them up automatically.
func StartSpan(ctx context.Context, logger *Logger, name string) (context.Context, *Span) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = newCorrelationID(16)
		ctx = context.WithValue(ctx, TraceIDKey, traceID)
	}
	parentID := GetSpanID(ctx)
	spanID := newCorrelationID(8)
	ctx = context.WithValue(ctx, SpanIDKey, spanID)

	span := &Span{
		Name:      name,
		TraceID:   traceID,
		SpanID:    spanID,
		ParentID:  parentID,
		StartTime: time.Now(),
		logger:    logger,
	}
	if logger != nil {
		logger.Debug(ctx, "span started", "span_name", name, "trace_id", traceID, "span_id", spanID)
	}
	return ctx, span
}

// End logs the span's duration and, if err is non-nil, records it as
// an error on the span's own log line.
func (s *Span) End(err error) {
	duration := time.Since(s.StartTime)
	if s.logger == nil {
		return
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, TraceIDKey, s.TraceID)
	ctx = context.WithValue(ctx, SpanIDKey, s.SpanID)
	if err != nil {
		s.logger.Error(ctx, "span ended", "span_name", s.Name, "duration_ms", duration.Milliseconds(), "error", err)
		return
	}
	s.logger.Debug(ctx, "span ended", "span_name", s.Name, "duration_ms", duration.Milliseconds())
}

// AddTraceID adds a trace ID to the context directly, for callers
// (e.g. `deskaide chat`'s REPL loop) that mint one run ID per turn
// rather than going through StartSpan.
func AddTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID on the context, or "" if none.
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

// GetSpanID returns the active span ID on the context, or "" if none.
func GetSpanID(ctx context.Context) string {
	if id, ok := ctx.Value(SpanIDKey).(string); ok {
		return id
	}
	return ""
}

func newCorrelationID(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
