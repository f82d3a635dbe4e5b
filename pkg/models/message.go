// Package models defines the core data types shared across the agent
// runtime, the session/analytics store, and the diagnostic tool set.
package models

import (
	"encoding/json"
	"time"
)

// Role indicates the message author type.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a session's message log. The log is
// append-only and totally ordered by insertion; it is the source of
// truth the agent loop operates on.
type Message struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // role=tool
	ToolName   string     `json:"tool_name,omitempty"`    // role=tool
	CreatedAt  time.Time  `json:"created_at"`
}

// ToolCall represents the LLM's request to execute a tool by name with
// a JSON argument object.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult is the outcome of dispatching a ToolCall through the
// registry. Content is always human- and LLM-readable text; Success
// distinguishes a refusal/failure from a completed probe even when the
// probe's diagnosis itself is negative (e.g. "WiFi is off" is a
// successful check, not a failed one).
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Content    string `json:"content"`
	Success    bool   `json:"success"`
}

// SessionOutcome is the terminal (or in-progress) state of a session.
type SessionOutcome string

const (
	OutcomeInProgress SessionOutcome = "in_progress"
	OutcomeResolved   SessionOutcome = "resolved"
	OutcomeUnresolved SessionOutcome = "unresolved"
	OutcomeAbandoned  SessionOutcome = "abandoned"
)

// IssueCategory buckets a session by the kind of problem it addressed,
// inferred from the tools used during its resolution path.
type IssueCategory string

const (
	CategoryUnknown      IssueCategory = "unknown"
	CategoryWifi         IssueCategory = "wifi"
	CategoryDNS          IssueCategory = "dns"
	CategoryGateway      IssueCategory = "gateway"
	CategoryConnectivity IssueCategory = "connectivity"
	CategoryIPConfig     IssueCategory = "ip_config"
	CategoryAdapter      IssueCategory = "adapter"
	CategoryOther        IssueCategory = "other"
)

// Session is a single conversation thread between a user and the
// diagnostics assistant. It is mutated only from within its own
// session-scoped critical section (see internal/sessions.Store.Lock)
// and its aggregate fields are derived from the events recorded
// against it.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	TotalPromptTokens     int `json:"total_prompt_tokens"`
	TotalCompletionTokens int `json:"total_completion_tokens"`

	Outcome         SessionOutcome `json:"outcome"`
	FeedbackScore   *int           `json:"feedback_score,omitempty"`
	FeedbackComment string         `json:"feedback_comment,omitempty"`

	IssueCategory    IssueCategory `json:"issue_category"`
	OSILayerResolved *int          `json:"osi_layer_resolved,omitempty"`

	MessageCount     int `json:"message_count"`
	UserMessageCount int `json:"user_message_count"`
	ToolCallCount    int `json:"tool_call_count"`

	LLMBackend  string `json:"llm_backend,omitempty"`
	ModelName   string `json:"model_name,omitempty"`
	HadFallback bool   `json:"had_fallback"`

	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	TotalLLMTimeMs   int64   `json:"total_llm_time_ms"`
	TotalToolTimeMs  int64   `json:"total_tool_time_ms"`

	Preview string `json:"preview,omitempty"`
}

// TimeToResolution returns end-start when the session has ended, or
// zero otherwise.
func (s *Session) TimeToResolution() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
