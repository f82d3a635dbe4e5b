// Package observability provides a lightweight pub/sub feed of
// diagnostic events, separate from the EventStore timeline: a
// listener (the `deskaide analytics` subcommand, or a future status
// bar) subscribes once and receives every usage/run event live,
// without having to poll a store.
package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// DiagnosticEventType identifies the type of diagnostic event.
type DiagnosticEventType string

const (
	EventTypeModelUsage          DiagnosticEventType = "model.usage"
	EventTypeRunAttempt          DiagnosticEventType = "run.attempt"
	EventTypeDiagnosticHeartbeat DiagnosticEventType = "diagnostic.heartbeat"
)

// DiagnosticEvent is the base event structure.
type DiagnosticEvent struct {
	Type DiagnosticEventType `json:"type"`
	Seq  int64               `json:"seq"`
	Ts   int64               `json:"ts"`
}

// ModelUsageEvent tracks token usage and cost for a single LLM call,
// the raw material the `analytics cost`/`analytics quality`
// subcommands aggregate over.
type ModelUsageEvent struct {
	DiagnosticEvent
	SessionID  string          `json:"session_id,omitempty"`
	Provider   string          `json:"provider,omitempty"`
	Model      string          `json:"model,omitempty"`
	Usage      UsageDetails    `json:"usage"`
	Context    *ContextDetails `json:"context,omitempty"`
	CostUSD    float64         `json:"cost_usd,omitempty"`
	DurationMs int64           `json:"duration_ms,omitempty"`
}

// UsageDetails contains token usage breakdown.
type UsageDetails struct {
	Input        int64 `json:"input,omitempty"`
	Output       int64 `json:"output,omitempty"`
	CacheRead    int64 `json:"cache_read,omitempty"`
	CacheWrite   int64 `json:"cache_write,omitempty"`
	PromptTokens int64 `json:"prompt_tokens,omitempty"`
	Total        int64 `json:"total,omitempty"`
}

// ContextDetails contains context window information.
type ContextDetails struct {
	Limit int64 `json:"limit,omitempty"`
	Used  int64 `json:"used,omitempty"`
}

// RunAttemptEvent tracks a single tool-loop iteration attempt,
// including retries after a provider falls back to the next one in
// the chain.
type RunAttemptEvent struct {
	DiagnosticEvent
	SessionID string `json:"session_id,omitempty"`
	RunID     string `json:"run_id"`
	Attempt   int    `json:"attempt"`
	Provider  string `json:"provider,omitempty"`
}

// DiagnosticHeartbeatEvent summarizes the sidecar supervisor and
// active session count, emitted periodically for a status display.
type DiagnosticHeartbeatEvent struct {
	DiagnosticEvent
	SidecarUp      bool `json:"sidecar_up"`
	ActiveSessions int  `json:"active_sessions"`
}

// DiagnosticEventPayload is a union type for all diagnostic events.
type DiagnosticEventPayload interface {
	EventType() DiagnosticEventType
	Sequence() int64
	Timestamp() int64
}

func (e *DiagnosticEvent) EventType() DiagnosticEventType { return e.Type }
func (e *DiagnosticEvent) Sequence() int64                { return e.Seq }
func (e *DiagnosticEvent) Timestamp() int64               { return e.Ts }

// DiagnosticListener receives diagnostic events.
type DiagnosticListener func(event DiagnosticEventPayload)

// DiagnosticEmitter manages diagnostic event emission.
type DiagnosticEmitter struct {
	mu        sync.RWMutex
	seq       int64
	enabled   bool
	listeners []DiagnosticListener
}

var globalEmitter = &DiagnosticEmitter{}

// SetDiagnosticsEnabled enables or disables diagnostic events.
func SetDiagnosticsEnabled(enabled bool) {
	globalEmitter.mu.Lock()
	defer globalEmitter.mu.Unlock()
	globalEmitter.enabled = enabled
}

// IsDiagnosticsEnabled returns whether diagnostics are enabled.
func IsDiagnosticsEnabled() bool {
	globalEmitter.mu.RLock()
	defer globalEmitter.mu.RUnlock()
	return globalEmitter.enabled
}

// OnDiagnosticEvent registers a listener for diagnostic events and
// returns an unsubscribe function.
func OnDiagnosticEvent(listener DiagnosticListener) func() {
	globalEmitter.mu.Lock()
	defer globalEmitter.mu.Unlock()
	globalEmitter.listeners = append(globalEmitter.listeners, listener)
	index := len(globalEmitter.listeners) - 1

	return func() {
		globalEmitter.mu.Lock()
		defer globalEmitter.mu.Unlock()
		if index < 0 || index >= len(globalEmitter.listeners) {
			return
		}
		globalEmitter.listeners = append(globalEmitter.listeners[:index], globalEmitter.listeners[index+1:]...)
	}
}

func nextSeq() int64 {
	return atomic.AddInt64(&globalEmitter.seq, 1)
}

func emit(event DiagnosticEventPayload) {
	globalEmitter.mu.RLock()
	if !globalEmitter.enabled {
		globalEmitter.mu.RUnlock()
		return
	}
	listeners := make([]DiagnosticListener, len(globalEmitter.listeners))
	copy(listeners, globalEmitter.listeners)
	globalEmitter.mu.RUnlock()

	for _, listener := range listeners {
		func() {
			defer func() { recover() }()
			listener(event)
		}()
	}
}

// EmitModelUsage emits a model usage event.
func EmitModelUsage(e *ModelUsageEvent) {
	e.Type = EventTypeModelUsage
	e.Seq = nextSeq()
	e.Ts = time.Now().UnixMilli()
	emit(e)
}

// EmitRunAttempt emits a run attempt event.
func EmitRunAttempt(e *RunAttemptEvent) {
	e.Type = EventTypeRunAttempt
	e.Seq = nextSeq()
	e.Ts = time.Now().UnixMilli()
	emit(e)
}

// EmitDiagnosticHeartbeat emits a diagnostic heartbeat event.
func EmitDiagnosticHeartbeat(e *DiagnosticHeartbeatEvent) {
	e.Type = EventTypeDiagnosticHeartbeat
	e.Seq = nextSeq()
	e.Ts = time.Now().UnixMilli()
	emit(e)
}

// ResetDiagnosticsForTest resets diagnostic state for testing.
func ResetDiagnosticsForTest() {
	globalEmitter.mu.Lock()
	defer globalEmitter.mu.Unlock()
	atomic.StoreInt64(&globalEmitter.seq, 0)
	globalEmitter.listeners = nil
}
