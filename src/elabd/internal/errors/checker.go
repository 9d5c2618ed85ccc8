package errors

import (
	"fmt"
	"time"
)

// CheckerError is returned when the checker answers a request with an error result.
type CheckerError struct {
	Method  string
	Code    int64
	Message string
}

// Error is an implementation of the error interface.
func (e *CheckerError) Error() string {
	return fmt.Sprintf("checker returned error for %q (code %d): %s", e.Method, e.Code, e.Message)
}

// RequestTimeoutError is returned when the checker does not answer a request in time.
// The session itself is unaffected.
type RequestTimeoutError struct {
	Method  string
	ID      string
	Timeout time.Duration
}

// Error is an implementation of the error interface.
func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("checker request %s %q timed out after %s", e.ID, e.Method, e.Timeout)
}

// ProtocolError reports a malformed frame or message from the checker.
// It never terminates the session on its own.
type ProtocolError struct {
	// Offset is the number of bytes consumed from the stream before the bad frame.
	Offset int64
	Reason string
	Err    error
}

// Error is an implementation of the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error at byte %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error at byte %d: %s", e.Offset, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// StartError reports that the checker could not be spawned or did not complete its handshake.
type StartError struct {
	Command string
	Err     error
}

// Error is an implementation of the error interface.
func (e *StartError) Error() string {
	return fmt.Sprintf("starting checker %q: %v", e.Command, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StartError) Unwrap() error {
	return e.Err
}
