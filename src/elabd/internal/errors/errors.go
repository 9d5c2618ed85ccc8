package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// NoUUIDOnWireError reports that the request is missing a UUID.
	NoUUIDOnWireError = New("UUID is required")
	// NoMessageOnWireError reports that the request is missing a message.
	NoMessageOnWireError = New("no message on wire")

	// ErrNoSession reports that no checker process is available to serve a call.
	ErrNoSession = New("no checker session")
	// ErrSessionRestarted reports that a pending call was abandoned because the checker restarted.
	ErrSessionRestarted = New("checker session restarted")
	// ErrSessionStopped reports that a pending call was abandoned because the checker was stopped.
	ErrSessionStopped = New("checker session stopped")
	// ErrRestartsExhausted reports that the checker crashed more often than the restart policy allows.
	ErrRestartsExhausted = New("checker restart attempts exhausted")
)

// IsBadRequest reports whether the error is a bad request from the caller.
func IsBadRequest(e error) bool {
	return stderr.Is(e, NoUUIDOnWireError) || stderr.Is(e, NoMessageOnWireError)
}

// IsSessionLost reports whether a call failed because its checker process went away,
// as opposed to the checker answering with an error.
func IsSessionLost(e error) bool {
	return stderr.Is(e, ErrSessionRestarted) || stderr.Is(e, ErrSessionStopped) || stderr.Is(e, ErrNoSession)
}
