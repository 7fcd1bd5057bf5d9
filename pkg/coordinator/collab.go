package coordinator

import (
	"time"

	"github.com/greenroom-live/greenroom/pkg/api"
	"github.com/greenroom-live/greenroom/pkg/session"
)

// Relay forwards a signaling payload to every other member as-is. The
// payload stays opaque, peers own its semantics. A lone member's
// signal is dropped silently.
func (h *Hub) Relay(pid string, t api.PT, sig *api.Signal) error {
	r, err := h.room(sig.SessionId)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if _, ok := r.joined[pid]; !ok {
		r.mu.Unlock()
		return session.ErrNotAMember
	}
	rest := r.members(pid)
	r.mu.Unlock()

	if len(rest) == 0 {
		return nil
	}
	sig.From = pid
	metricSignalsRelayed.Inc()
	h.push(rest, t, sig)
	return nil
}

// Chat appends the message to the session's durable log and then fans
// it out to every member, the sender included, each carrying the
// server-assigned timestamp.
func (h *Hub) Chat(pid string, rq *api.ChatMessageRequest) error {
	r, err := h.room(rq.SessionId)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if _, ok := r.joined[pid]; !ok {
		r.mu.Unlock()
		return session.ErrNotAMember
	}
	all := r.members("")
	r.touched = time.Now()
	r.mu.Unlock()

	m, err := h.store.AppendMessage(rq.SessionId, pid, rq.Text, time.Now())
	if err != nil {
		return err
	}
	metricChatMessages.Inc()
	h.push(all, api.ChatReceived, api.ChatMessagePush{
		SessionId: rq.SessionId,
		From:      pid,
		Text:      m.Body,
		SentAt:    m.SentAt.UnixMilli(),
	})
	return nil
}

// Code replaces the shared editor snapshot, last writer wins, and
// pushes the new content to the other members. Only the latest
// snapshot is kept, there is no edit history.
func (h *Hub) Code(pid string, rq *api.CodeChangeRequest) error {
	r, err := h.room(rq.SessionId)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if _, ok := r.joined[pid]; !ok {
		r.mu.Unlock()
		return session.ErrNotAMember
	}
	r.code = rq.Code
	r.touched = time.Now()
	rest := r.members(pid)
	r.mu.Unlock()

	h.push(rest, api.CodeUpdate, api.CodeUpdatePush{SessionId: rq.SessionId, From: pid, Code: rq.Code})
	return nil
}

// Cursor pushes the sender's caret position to the other members.
// Purely ephemeral, nothing is stored and late joiners don't see it.
func (h *Hub) Cursor(pid string, rq *api.CursorRequest) error {
	r, err := h.room(rq.SessionId)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if _, ok := r.joined[pid]; !ok {
		r.mu.Unlock()
		return session.ErrNotAMember
	}
	rest := r.members(pid)
	r.mu.Unlock()

	h.push(rest, api.CursorUpdate, api.CursorPush{SessionId: rq.SessionId, From: pid, Line: rq.Line, Column: rq.Column})
	return nil
}
