package coordinator

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/greenroom-live/greenroom/pkg/api"
	"github.com/greenroom-live/greenroom/pkg/com"
	"github.com/greenroom-live/greenroom/pkg/config"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/network/httpx"
	"github.com/greenroom-live/greenroom/pkg/session"
	"github.com/greenroom-live/greenroom/pkg/store"
)

// NewServer exposes the hub over HTTP: the websocket endpoint plus a
// small REST surface for scheduling and the poll read path.
func NewServer(conf config.Coordinator, hub *Hub, log *logger.Logger) (*httpx.Server, error) {
	return httpx.NewServer(conf.Server.Address, func(*httpx.Server) http.Handler {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /ws", hub.handleWebsocket)
		mux.HandleFunc("POST /api/sessions", hub.handleCreateSession)
		mux.HandleFunc("GET /api/sessions/{id}", hub.handleGetSession)
		mux.HandleFunc("GET /api/sessions/{id}/messages", hub.handleMessages)
		mux.HandleFunc("DELETE /api/sessions/{id}", hub.handleCancelSession)
		return mux
	}, httpx.WithServerConfig(conf.Server), httpx.WithLogger(log))
}

func (h *Hub) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("pid")
	if pid == "" {
		http.Error(w, "pid is required", http.StatusBadRequest)
		return
	}
	client, err := h.connector.NewServer(w, r, h.log)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade fail")
		return
	}
	user := NewUser(client, pid, h.log)
	if prev := h.registry.Attach(pid, user); prev != nil {
		prev.Disconnect()
	}
	h.handleClient(user)
}

type participantSpec struct {
	Id   string `json:"id"`
	Role string `json:"role"`
}

type createSessionRequest struct {
	Id           string            `json:"id,omitempty"`
	ScheduledAt  time.Time         `json:"scheduled_at"`
	DurationMin  int               `json:"duration_min"`
	Participants []participantSpec `json:"participants"`
}

type sessionInfo struct {
	Id          string     `json:"id"`
	State       string     `json:"state"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Code        string     `json:"code,omitempty"`
	Members     []string   `json:"members,omitempty"`
}

func (h *Hub) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var rq createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&rq); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := validateRoster(rq.Participants); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rq.Id == "" {
		rq.Id = com.NewUid().String()
	}
	rec := store.Session{
		ID:          rq.Id,
		ScheduledAt: rq.ScheduledAt,
		Duration:    time.Duration(rq.DurationMin) * time.Minute,
	}
	for _, p := range rq.Participants {
		rec.Participants = append(rec.Participants, store.Participant{
			SessionID:     rq.Id,
			ParticipantID: p.Id,
			Role:          p.Role,
		})
	}
	if err := h.store.CreateSession(&rec); err != nil {
		if errors.Is(err, store.ErrExists) {
			http.Error(w, "session already exists", http.StatusConflict)
			return
		}
		h.httpError(w, err)
		return
	}
	h.log.Info().Msgf("session %v scheduled at %v", rq.Id, rq.ScheduledAt.Format(time.RFC3339))
	writeJSON(w, http.StatusCreated, sessionInfo{Id: rq.Id, State: rec.Status, ScheduledAt: rec.ScheduledAt})
}

// validateRoster checks the shape of an interview: exactly one
// candidate and one interviewer, plus optional admin observers.
func validateRoster(ps []participantSpec) error {
	var candidates, interviewers int
	seen := map[string]struct{}{}
	for _, p := range ps {
		if p.Id == "" {
			return errors.New("participant id is required")
		}
		if _, dup := seen[p.Id]; dup {
			return errors.New("duplicate participant " + p.Id)
		}
		seen[p.Id] = struct{}{}
		role := session.Role(p.Role)
		if !role.Valid() {
			return errors.New("unknown role " + p.Role)
		}
		switch role {
		case session.Candidate:
			candidates++
		case session.Interviewer:
			interviewers++
		}
	}
	if candidates != 1 || interviewers != 1 {
		return errors.New("an interview needs exactly one candidate and one interviewer")
	}
	return nil
}

// handleGetSession is the poll backstop: the lifecycle state always
// comes from the durable record, the live extras (code, members) from
// the resident room when there is one.
func (h *Hub) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := h.store.GetSession(id)
	if err != nil {
		h.httpError(w, err)
		return
	}
	info := sessionInfo{
		Id:          rec.ID,
		State:       rec.Status,
		ScheduledAt: rec.ScheduledAt,
		StartedAt:   rec.StartedAt,
		EndedAt:     rec.EndedAt,
	}
	if rm, err := h.rooms.Find(id); err == nil {
		info.Code, info.Members = rm.snapshot()
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Hub) handleMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.GetSession(id); err != nil {
		h.httpError(w, err)
		return
	}
	var after time.Time
	if v := r.URL.Query().Get("after"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "after must be unix milliseconds", http.StatusBadRequest)
			return
		}
		after = time.UnixMilli(ms)
	}
	list, err := h.store.Messages(id, after)
	if err != nil {
		h.httpError(w, err)
		return
	}
	out := make([]api.ChatMessagePush, 0, len(list))
	for _, m := range list {
		out = append(out, api.ChatMessagePush{
			SessionId: m.SessionID,
			From:      m.SenderID,
			Text:      m.Body,
			SentAt:    m.SentAt.UnixMilli(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Hub) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actor")
	if actor == "" {
		http.Error(w, "actor is required", http.StatusBadRequest)
		return
	}
	push, err := h.Cancel(actor, r.PathValue("id"))
	if err != nil {
		h.httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, push)
}

func (h *Hub) httpError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, session.ErrNotAuthorized):
		code = http.StatusForbidden
	case errors.Is(err, session.ErrInvalidTransition):
		code = http.StatusConflict
	default:
		h.log.Error().Err(err).Msg("http handler fail")
	}
	writeJSON(w, code, api.ErrorResponse{Code: session.ErrorCode(err), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
