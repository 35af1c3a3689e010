package shifts

import "errors"

var (
	ErrNoActiveSession      = errors.New("no active session")
	ErrAlreadyActive        = errors.New("user is already clocked in")
	ErrNotActive            = errors.New("user is not clocked in")
	ErrSessionAlreadyActive = errors.New("a session is already active")
	ErrDuplicateSessionName = errors.New("session name was already used")
	ErrNothingToZero        = errors.New("user has no time to zero out")
	ErrInvalidRecord        = errors.New("invalid record")
)
