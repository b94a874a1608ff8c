package models

import "fmt"

// ErrorKind classifies adapter-boundary failures into the categories the
// Queue Manager's retry/backoff and loop-guard logic reason about. It is
// assigned once, at the boundary where a raw SDK/HTTP error is observed,
// never re-derived deeper in the call stack.
type ErrorKind string

const (
	ErrorKindNotFound    ErrorKind = "NOT_FOUND"
	ErrorKindGone        ErrorKind = "GONE"
	ErrorKindTransient   ErrorKind = "TRANSIENT"
	ErrorKindBlocked     ErrorKind = "BLOCKED"
	ErrorKindParseError  ErrorKind = "PARSE_ERROR"
	ErrorKindRateLimited ErrorKind = "RATE_LIMITED"
	ErrorKindBudget      ErrorKind = "BUDGET_EXHAUSTED"
	ErrorKindValidation  ErrorKind = "VALIDATION"
	ErrorKindMaxDepthExceeded ErrorKind = "MAX_DEPTH_EXCEEDED"
	ErrorKindUnknown     ErrorKind = "UNKNOWN"
)

// ClassifiedError wraps an underlying error with the ErrorKind assigned
// to it at the adapter boundary, and an optional retry-after hint parsed
// from the upstream response.
type ClassifiedError struct {
	Kind       ErrorKind
	RetryAfter *int // seconds, nil when the upstream gave no hint
	Err        error
}

func (e *ClassifiedError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("%s (retry after %ds): %v", e.Kind, *e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Classify wraps err with kind, attaching retryAfterSeconds when > 0.
func Classify(kind ErrorKind, err error, retryAfterSeconds int) *ClassifiedError {
	ce := &ClassifiedError{Kind: kind, Err: err}
	if retryAfterSeconds > 0 {
		ce.RetryAfter = &retryAfterSeconds
	}
	return ce
}

// KindOf extracts the ErrorKind from err if it (or something it wraps)
// is a *ClassifiedError, else ErrorKindUnknown.
func KindOf(err error) ErrorKind {
	var ce *ClassifiedError
	for err != nil {
		if c, ok := err.(*ClassifiedError); ok {
			ce = c
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if ce == nil {
		return ErrorKindUnknown
	}
	return ce.Kind
}

// IsRetryable reports whether kind warrants a requeue-with-backoff
// rather than a terminal FAILED/BLOCKED transition. Blocked (bot wall,
// 403) is retryable with a longer backoff floor, not terminal on first
// attempt, since the source may simply need to cool down.
func IsRetryable(kind ErrorKind) bool {
	switch kind {
	case ErrorKindTransient, ErrorKindRateLimited, ErrorKindBlocked:
		return true
	default:
		return false
	}
}
