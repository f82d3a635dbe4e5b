package models

import "time"

// ResolutionPath records the ordered sequence of diagnostic tools used
// in a session, for the get_common_resolution_paths aggregate. It is
// written once, when the session reaches a terminal outcome.
type ResolutionPath struct {
	SessionID     string    `json:"session_id"`
	ToolSequence  []string  `json:"tool_sequence"`
	WasSuccessful bool      `json:"was_successful"`
	RecordedAt    time.Time `json:"recorded_at"`
}
