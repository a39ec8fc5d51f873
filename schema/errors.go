package schema

import "errors"

var (
	// ErrInvalidWorkspace indicates an invalid workspace identifier.
	ErrInvalidWorkspace = errors.New("invalid workspace")
	// ErrInvalidTask indicates an invalid task identifier.
	ErrInvalidTask = errors.New("invalid task")
	// ErrInvalidRequest indicates a malformed clarification payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoActiveTask indicates no conversation identity is selected.
	ErrNoActiveTask = errors.New("no active task")
	// ErrSessionClosed indicates the session service has been torn down.
	ErrSessionClosed = errors.New("session closed")
)
