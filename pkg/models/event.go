package models

import "time"

// EventType enumerates the analytics event kinds recorded against a
// session. Events are append-only and timestamps are informational
// only — the message log, not event ordering, is the source of truth
// for the agent loop.
type EventType string

const (
	EventLLMCall          EventType = "llm-call"
	EventToolCall         EventType = "tool-call"
	EventUserMessage      EventType = "user-message"
	EventAssistantMessage EventType = "assistant-message"
	EventFallback         EventType = "fallback"
	EventError            EventType = "error"
)

// Event is a single analytics record belonging to a session.
type Event struct {
	EventID            string         `json:"event_id"`
	SessionID          string         `json:"session_id"`
	EventType          EventType      `json:"event_type"`
	Timestamp          time.Time      `json:"timestamp"`
	DurationMs         int64          `json:"duration_ms,omitempty"`
	PromptTokens       int            `json:"prompt_tokens,omitempty"`
	CompletionTokens   int            `json:"completion_tokens,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// SessionSummary is the aggregate returned by get_session_summary.
type SessionSummary struct {
	TotalSessions               int     `json:"total_sessions"`
	ResolvedCount               int     `json:"resolved_count"`
	UnresolvedCount             int     `json:"unresolved_count"`
	AbandonedCount              int     `json:"abandoned_count"`
	InProgressCount             int     `json:"in_progress_count"`
	AvgTokensPerSession         float64 `json:"avg_tokens_per_session"`
	AvgTimeToResolutionSeconds  float64 `json:"avg_time_to_resolution_seconds"`
	AvgMessagesPerSession       float64 `json:"avg_messages_per_session"`
	TotalCostUSD                float64 `json:"total_cost_usd"`
	OllamaSessions              int     `json:"ollama_sessions"`
	OpenAISessions              int     `json:"openai_sessions"`
	FallbackCount               int     `json:"fallback_count"`
}

// QualityMetrics is the aggregate returned by get_quality_metrics.
type QualityMetrics struct {
	AvgMessagesToResolution float64 `json:"avg_messages_to_resolution"`
	SessionsWithLoops       int     `json:"sessions_with_loops"`
	TotalLoopOccurrences    int     `json:"total_loop_occurrences"`
	AbandonedSessions       int     `json:"abandoned_sessions"`
	DropOffRate             float64 `json:"drop_off_rate"`
}

// CostPeriod is one time-bucketed row returned by get_cost_by_period.
type CostPeriod struct {
	Period       string  `json:"period"`
	TotalCost    float64 `json:"total_cost"`
	TotalTokens  int     `json:"total_tokens"`
	SessionCount int     `json:"session_count"`
}

// ResolutionPathCount is one row returned by get_common_resolution_paths.
type ResolutionPathCount struct {
	ToolSequence []string `json:"tool_sequence"`
	Count        int      `json:"count"`
}
