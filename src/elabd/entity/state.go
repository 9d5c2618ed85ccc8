package entity

import "time"

// SessionState is the lifecycle state of a checker session.
type SessionState int

const (
	// SessionStateStopped means no checker process is running and none is wanted.
	SessionStateStopped SessionState = iota
	// SessionStateStarting means a checker process is being spawned and handshaked.
	SessionStateStarting
	// SessionStateReady means the checker accepts requests.
	SessionStateReady
	// SessionStateRestarting means the previous process is gone and a new one is on its way.
	SessionStateRestarting
	// SessionStateCrashed means the checker failed and will not be restarted without an explicit request.
	SessionStateCrashed
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case SessionStateStopped:
		return "stopped"
	case SessionStateStarting:
		return "starting"
	case SessionStateReady:
		return "ready"
	case SessionStateRestarting:
		return "restarting"
	case SessionStateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Live reports whether a checker process is running or being brought up in this state.
func (s SessionState) Live() bool {
	return s == SessionStateStarting || s == SessionStateReady || s == SessionStateRestarting
}

// ResultsKnown reports whether diagnostics and tasks produced in this state can be trusted.
// While restarting or crashed, previously reported results are treated as unknown.
func (s SessionState) ResultsKnown() bool {
	return s == SessionStateStarting || s == SessionStateReady
}

// StateEvent describes a single lifecycle transition of a checker session.
type StateEvent struct {
	WorkspaceRoot string
	State         SessionState
	Previous      SessionState
	// Err is the failure that caused the transition, if any.
	Err error
	// Attempt is the restart attempt number when State is SessionStateRestarting.
	Attempt int
	// NextRetry is the backoff delay before the next restart attempt.
	NextRetry time.Duration
}
