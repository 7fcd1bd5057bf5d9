package coordinator

import (
	"sync"
	"time"

	"github.com/greenroom-live/greenroom/pkg/com"
	"github.com/greenroom-live/greenroom/pkg/logger"
)

// binding tracks one participant's live connection (if any) and the
// session they are joined to. The binding survives a dropped socket
// until the grace window runs out.
type binding struct {
	conn       Conn
	connId     com.Uid
	session    string
	detachedAt time.Time
}

// Registry keeps the participant to connection bindings. Connections
// are transient, participant ids are durable: a reconnect replaces the
// connection behind the same binding without touching membership.
type Registry struct {
	mu    sync.Mutex
	byPid map[string]*binding
	log   *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{byPid: make(map[string]*binding, 16), log: log}
}

// Attach binds the connection to the participant and returns the
// previous connection when the participant was already attached
// elsewhere, so the caller can terminate it. One live connection per
// participant.
func (r *Registry) Attach(pid string, conn Conn) (prev Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.byPid[pid]
	if b == nil {
		r.byPid[pid] = &binding{conn: conn, connId: conn.Id()}
		return nil
	}
	if b.conn != nil && b.connId != conn.Id() {
		prev = b.conn
	}
	b.conn, b.connId, b.detachedAt = conn, conn.Id(), time.Time{}
	return prev
}

// Detach clears the connection only when it is still the current one,
// so a stale teardown can't knock out a fresh reconnect. Membership is
// kept until the janitor expires the binding.
func (r *Registry) Detach(pid string, connId com.Uid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.byPid[pid]
	if b == nil || b.connId != connId {
		return
	}
	b.conn = nil
	b.detachedAt = time.Now()
	if b.session == "" {
		delete(r.byPid, pid)
	}
}

// Resolve returns the participant's live connection, nil when detached.
func (r *Registry) Resolve(pid string) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b := r.byPid[pid]; b != nil {
		return b.conn
	}
	return nil
}

func (r *Registry) setSession(pid, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b := r.byPid[pid]; b != nil {
		b.session = id
	}
}

func (r *Registry) clearSession(pid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.byPid[pid]
	if b == nil {
		return
	}
	b.session = ""
	if b.conn == nil {
		delete(r.byPid, pid)
	}
}

type expired struct{ pid, session string }

// expire removes bindings that stayed detached longer than the grace
// window and reports which memberships should now take effect as
// leaves.
func (r *Registry) expire(grace time.Duration) []expired {
	deadline := time.Now().Add(-grace)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []expired
	for pid, b := range r.byPid {
		if b.conn != nil || b.detachedAt.After(deadline) {
			continue
		}
		if b.session != "" {
			out = append(out, expired{pid: pid, session: b.session})
		}
		delete(r.byPid, pid)
	}
	return out
}
