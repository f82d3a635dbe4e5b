package models

import "time"

// FeedbackSource identifies who produced a piece of session feedback.
type FeedbackSource string

const (
	FeedbackSourceUser   FeedbackSource = "user"
	FeedbackSourceSystem FeedbackSource = "system"
)

// Feedback is a single rating attached to a session, 1 (poor) to 5
// (great). A session may accumulate more than one if the UI lets the
// user revise their rating; the store keeps every row and the
// analytics queries read the latest.
type Feedback struct {
	FeedbackID string         `json:"feedback_id"`
	SessionID  string         `json:"session_id"`
	Score      int            `json:"score"`
	Comment    string         `json:"comment,omitempty"`
	Source     FeedbackSource `json:"source"`
	CreatedAt  time.Time      `json:"created_at"`
}
