package coordinator

import (
	"sort"
	"sync"
	"time"

	"github.com/greenroom-live/greenroom/pkg/api"
	"github.com/greenroom-live/greenroom/pkg/com"
	"github.com/greenroom-live/greenroom/pkg/config"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/session"
	"github.com/greenroom-live/greenroom/pkg/store"
)

// Hub routes every session event: membership, signaling relay,
// collaboration fan-out and lifecycle transitions. Rooms are loaded
// lazily from the store on first touch and reclaimed by the janitor.
type Hub struct {
	conf      config.Coordinator
	store     *store.Store
	registry  *Registry
	rooms     com.Map[string, *room]
	loadMu    sync.Mutex
	connector *com.Connector
	log       *logger.Logger
}

func NewHub(conf config.Coordinator, st *store.Store, log *logger.Logger) *Hub {
	return &Hub{
		conf:      conf,
		store:     st,
		registry:  NewRegistry(log),
		rooms:     com.NewMap[string, *room](),
		connector: com.NewConnector(com.WithTag("c"), com.WithOrigin(conf.Origin)),
		log:       log,
	}
}

// room returns the resident runtime for the session, loading it from
// the store on a miss.
func (h *Hub) room(id string) (*room, error) {
	if r, err := h.rooms.Find(id); err == nil {
		return r, nil
	}
	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	if r, err := h.rooms.Find(id); err == nil {
		return r, nil
	}
	rec, err := h.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	r := newRoom(rec)
	h.rooms.Put(id, r)
	h.log.Debug().Msgf("session %v resident (%v)", id, r.status)
	return r, nil
}

// Join makes the participant a member of the session and catches them
// up with the current state. Joining twice is a no-op that still
// returns the snapshot, so reconnects are free. Terminal sessions
// answer with their final state without admitting anyone.
func (h *Hub) Join(pid, id string) (*api.SessionJoinedResponse, error) {
	r, err := h.room(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	role, ok := r.roles[pid]
	if !ok {
		r.mu.Unlock()
		return nil, session.ErrNotAuthorized
	}
	res := &api.SessionJoinedResponse{SessionId: id, State: string(r.status), Role: string(role), Code: r.code}
	if r.status.Terminal() {
		r.mu.Unlock()
		return res, nil
	}
	_, already := r.joined[pid]
	r.joined[pid] = struct{}{}
	r.touched = time.Now()
	res.Members = r.members(pid)
	r.mu.Unlock()

	sort.Strings(res.Members)
	h.registry.setSession(pid, id)
	if !already {
		h.push(res.Members, api.PeerJoined, api.PeerPayload{SessionId: id, ParticipantId: pid})
	}
	return res, nil
}

// Leave removes the participant's membership right away, no grace.
// Leaving a session one is not in is a no-op.
func (h *Hub) Leave(pid, id string) error {
	r, err := h.rooms.Find(id)
	if err != nil {
		return nil
	}
	r.mu.Lock()
	if _, ok := r.joined[pid]; !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.joined, pid)
	r.touched = time.Now()
	rest := r.members("")
	r.mu.Unlock()

	h.registry.clearSession(pid)
	h.push(rest, api.PeerLeft, api.PeerPayload{SessionId: id, ParticipantId: pid})
	return nil
}

// push notifies each participant's live connection, best effort: a
// detached or stalled receiver loses the message, the rest still get
// theirs, the sender is never blocked on it.
func (h *Hub) push(pids []string, t api.PT, payload any) {
	for _, pid := range pids {
		conn := h.registry.Resolve(pid)
		if conn == nil {
			metricDeliveryFailures.Inc()
			h.log.Debug().Msgf("dropped %v push, %v is detached", t, pid)
			continue
		}
		conn.Notify(t, payload)
	}
}

// reclaim evicts terminal rooms that sat idle past the retention
// window. Their durable records stay in the store.
func (h *Hub) reclaim(retention time.Duration) {
	deadline := time.Now().Add(-retention)
	var stale []string
	h.rooms.ForEach(func(r *room) {
		r.mu.Lock()
		if r.status.Terminal() && len(r.joined) == 0 && r.touched.Before(deadline) {
			stale = append(stale, r.id)
		}
		r.mu.Unlock()
	})
	for _, id := range stale {
		h.rooms.RemoveByKey(id)
		h.log.Debug().Msgf("session %v reclaimed", id)
	}
}
