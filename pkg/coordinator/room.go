package coordinator

import (
	"sync"
	"time"

	"github.com/greenroom-live/greenroom/pkg/session"
	"github.com/greenroom-live/greenroom/pkg/store"
)

// room is the in-memory runtime of one session. All mutations of a
// room happen under its own lock, which serializes events within the
// session while keeping sessions independent of each other.
type room struct {
	id string

	mu      sync.Mutex
	status  session.Status
	roles   map[string]session.Role
	joined  map[string]struct{}
	code    string
	touched time.Time
}

func newRoom(rec *store.Session) *room {
	roles := make(map[string]session.Role, len(rec.Participants))
	for _, p := range rec.Participants {
		roles[p.ParticipantID] = session.Role(p.Role)
	}
	return &room{
		id:      rec.ID,
		status:  session.Status(rec.Status),
		roles:   roles,
		joined:  make(map[string]struct{}, len(roles)),
		touched: time.Now(),
	}
}

// members returns the joined participants except the given one.
// Callers hold r.mu.
func (r *room) members(except string) []string {
	out := make([]string, 0, len(r.joined))
	for pid := range r.joined {
		if pid != except {
			out = append(out, pid)
		}
	}
	return out
}

// snapshot returns the room state for the poll read path.
func (r *room) snapshot() (code string, members []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code, r.members("")
}
