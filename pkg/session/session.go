// Package session defines the interview session domain vocabulary:
// lifecycle states, participant roles and the shared error taxonomy.
package session

// Status is a session lifecycle state.
type Status string

const (
	Scheduled  Status = "scheduled"
	InProgress Status = "in-progress"
	Completed  Status = "completed"
	Cancelled  Status = "cancelled"
)

// Terminal says whether no further transition can leave the state.
func (s Status) Terminal() bool { return s == Completed || s == Cancelled }

// CanTransitionTo reports the legality of a lifecycle move. Transitions
// are monotonic: scheduled → in-progress → completed, plus the two
// short-circuits scheduled → cancelled and scheduled → completed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case Scheduled:
		return next == InProgress || next == Completed || next == Cancelled
	case InProgress:
		return next == Completed
	default:
		return false
	}
}

func (s Status) Valid() bool {
	switch s {
	case Scheduled, InProgress, Completed, Cancelled:
		return true
	}
	return false
}

// Role is a participant's display role within a session.
type Role string

const (
	Candidate   Role = "candidate"
	Interviewer Role = "interviewer"
	Admin       Role = "admin"
)

// CanModerate says whether the role may apply lifecycle transitions.
func (r Role) CanModerate() bool { return r == Interviewer || r == Admin }

func (r Role) Valid() bool {
	switch r {
	case Candidate, Interviewer, Admin:
		return true
	}
	return false
}
