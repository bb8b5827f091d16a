package scheduling

import "fmt"

// ValidationError reports malformed input (e.g. end before start). It is
// never retried; the caller must fix the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports a double-booking: the proposed window overlaps an
// existing non-terminal assignment of the same consultant.
type ConflictError struct {
	ConsultantID string
	BlockingID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("consultant %s already assigned during this time period (conflicts with assignment %s)",
		e.ConsultantID, e.BlockingID)
}

// NotFoundError reports a missing assignment, consultant or project.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// TransientError wraps lock contention, timeouts and serialization failures
// after retries are exhausted. Safe for callers to retry with backoff; never
// interpreted as "no conflict".
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("store temporarily unavailable: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
