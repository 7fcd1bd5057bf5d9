package session

import "errors"

var (
	// ErrNotAuthorized rejects a join or transition by a participant
	// outside the session's authorized set (or below the required role).
	ErrNotAuthorized = errors.New("not authorized")
	// ErrSessionNotFound rejects an operation on an unknown session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotAMember rejects an event from a participant that is not
	// currently joined.
	ErrNotAMember = errors.New("not a member")
	// ErrInvalidTransition rejects an illegal lifecycle move.
	ErrInvalidTransition = errors.New("invalid transition")
)

// ErrorCode maps a taxonomy error to its wire code. Unknown errors map
// to internal.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return "NotAuthorized"
	case errors.Is(err, ErrSessionNotFound):
		return "SessionNotFound"
	case errors.Is(err, ErrNotAMember):
		return "NotAMember"
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	default:
		return "Internal"
	}
}
