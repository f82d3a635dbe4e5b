package sidecar

import "fmt"

// NotFoundError is returned when no sidecar binary can be located.
type NotFoundError struct {
	Candidates []string
}

func (e *NotFoundError) Error() string {
	msg := "sidecar binary not found\nSearched locations:\n"
	for _, c := range e.Candidates {
		msg += "  - " + c + "\n"
	}
	return msg + "Install the local model runtime, or point sidecar.binary_path at it."
}

// StartupError is returned when the sidecar process exits or fails to
// become healthy before the startup timeout.
type StartupError struct {
	Cause  error
	Stderr string
}

func (e *StartupError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("sidecar failed to start: %v", e.Cause)
	}
	return fmt.Sprintf("sidecar failed to start: %v\nstderr: %s", e.Cause, e.Stderr)
}

func (e *StartupError) Unwrap() error {
	return e.Cause
}
