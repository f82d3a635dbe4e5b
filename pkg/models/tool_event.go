package models

import "time"

// ToolEvent records one tool dispatch against a session for analytics.
// Append-only; is_repeated and consecutive_count are derived against
// the collector's running "last tool name" state for the session.
type ToolEvent struct {
	EventID          string         `json:"event_id"`
	SessionID        string         `json:"session_id"`
	Timestamp        time.Time      `json:"timestamp"`
	ToolName         string         `json:"tool_name"`
	ExecutionTimeMs  int64          `json:"execution_time_ms"`
	Success          bool           `json:"success"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	IsRepeated       bool           `json:"is_repeated"`
	ConsecutiveCount int            `json:"consecutive_count"`
	Arguments        map[string]any `json:"arguments,omitempty"`
	ResultSummary    string         `json:"result_summary,omitempty"`
}

// ToolStats is the per-tool aggregate returned by get_tool_stats.
type ToolStats struct {
	ToolName              string  `json:"tool_name"`
	TotalCalls            int     `json:"total_calls"`
	SuccessCount          int     `json:"success_count"`
	FailureCount          int     `json:"failure_count"`
	AvgExecutionTimeMs    float64 `json:"avg_execution_time_ms"`
	TotalExecutionTimeMs  int64   `json:"total_execution_time_ms"`
	LoopOccurrences       int     `json:"loop_occurrences"`
}
