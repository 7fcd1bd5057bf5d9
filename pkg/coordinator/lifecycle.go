package coordinator

import (
	"time"

	"github.com/greenroom-live/greenroom/pkg/api"
	"github.com/greenroom-live/greenroom/pkg/session"
)

// Start moves the session to in-progress and announces it to every
// member over their live connections.
func (h *Hub) Start(pid, id string) (*api.SessionLifecyclePush, error) {
	return h.transition(pid, id, session.InProgress)
}

// End completes the session. Ending an already completed session is
// an idempotent no-op that re-acks the final state.
func (h *Hub) End(pid, id string) (*api.SessionLifecyclePush, error) {
	return h.transition(pid, id, session.Completed)
}

// Cancel calls off a session that never started.
func (h *Hub) Cancel(pid, id string) (*api.SessionLifecyclePush, error) {
	return h.transition(pid, id, session.Cancelled)
}

// transition applies one lifecycle move. The durable record is
// advanced first, under the room lock, so the push and the poll read
// paths can never disagree about the state: a member that misses the
// push still sees the new state on the next poll. On a terminal move
// the membership is cleared after the announcement.
func (h *Hub) transition(pid, id string, to session.Status) (*api.SessionLifecyclePush, error) {
	r, err := h.room(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	role, ok := r.roles[pid]
	if !ok || !role.CanModerate() {
		r.mu.Unlock()
		return nil, session.ErrNotAuthorized
	}
	if to == session.Completed && r.status == session.Completed {
		r.mu.Unlock()
		push := &api.SessionLifecyclePush{SessionId: id, State: string(to)}
		if log, err := h.store.Transitions(id); err == nil && len(log) > 0 {
			last := log[len(log)-1]
			push.By, push.At = last.ActorID, last.At.UnixMilli()
		}
		return push, nil
	}
	from := r.status
	if !from.CanTransitionTo(to) {
		r.mu.Unlock()
		return nil, session.ErrInvalidTransition
	}
	at := time.Now()
	if err := h.store.RecordTransition(id, from, to, pid, at); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.status = to
	r.touched = at
	all := r.members("")
	if to.Terminal() {
		r.joined = make(map[string]struct{})
	}
	r.mu.Unlock()

	h.log.Info().Msgf("session %v: %v → %v by %v", id, from, to, pid)
	push := &api.SessionLifecyclePush{SessionId: id, State: string(to), By: pid, At: at.UnixMilli()}
	t := api.SessionStarted
	if to != session.InProgress {
		t = api.SessionEnded
	}
	h.push(all, t, push)
	if to.Terminal() {
		for _, m := range all {
			h.registry.clearSession(m)
		}
	}
	return push, nil
}
