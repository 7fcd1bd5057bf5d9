package coordinator

import (
	"github.com/greenroom-live/greenroom/pkg/api"
	"github.com/greenroom-live/greenroom/pkg/session"
)

// handleClient pumps one connection until teardown. Packets arrive in
// the order the participant sent them and are handled one by one, so
// per-sender ordering holds end to end.
func (h *Hub) handleClient(user *User) {
	user.OnPacket(func(in api.In) { h.routePacket(user, in) })
	<-user.Listen()
	h.registry.Detach(user.Pid(), user.Id())
	user.log.Debug().Msg("Client loop done")
}

func (h *Hub) routePacket(user *User, in api.In) {
	pid := user.Pid()
	var err error
	switch in.T {
	case api.JoinSession:
		rq := api.Unwrap[api.JoinSessionRequest](in.Payload)
		if rq == nil {
			err = api.ErrMalformed
			break
		}
		var res *api.SessionJoinedResponse
		if res, err = h.Join(pid, rq.SessionId); err == nil {
			user.Route(in, api.SessionJoined, res)
		}
	case api.LeaveSession:
		rq := api.Unwrap[api.LeaveSessionRequest](in.Payload)
		if rq == nil {
			err = api.ErrMalformed
			break
		}
		if err = h.Leave(pid, rq.SessionId); err == nil {
			user.Route(in, api.LeaveSession, rq)
		}
	case api.Offer, api.Answer, api.IceCandidate:
		sig := api.Unwrap[api.Signal](in.Payload)
		if sig == nil {
			err = api.ErrMalformed
			break
		}
		err = h.Relay(pid, in.T, sig)
	case api.ChatMessage:
		rq := api.Unwrap[api.ChatMessageRequest](in.Payload)
		if rq == nil {
			err = api.ErrMalformed
			break
		}
		err = h.Chat(pid, rq)
	case api.CodeChange:
		rq := api.Unwrap[api.CodeChangeRequest](in.Payload)
		if rq == nil {
			err = api.ErrMalformed
			break
		}
		err = h.Code(pid, rq)
	case api.Cursor:
		rq := api.Unwrap[api.CursorRequest](in.Payload)
		if rq == nil {
			err = api.ErrMalformed
			break
		}
		err = h.Cursor(pid, rq)
	case api.StartSession:
		rq := api.Unwrap[api.StartSessionRequest](in.Payload)
		if rq == nil {
			err = api.ErrMalformed
			break
		}
		var push *api.SessionLifecyclePush
		if push, err = h.Start(pid, rq.SessionId); err == nil {
			user.Route(in, api.SessionStarted, push)
		}
	case api.EndSession:
		rq := api.Unwrap[api.EndSessionRequest](in.Payload)
		if rq == nil {
			err = api.ErrMalformed
			break
		}
		var push *api.SessionLifecyclePush
		if push, err = h.End(pid, rq.SessionId); err == nil {
			user.Route(in, api.SessionEnded, push)
		}
	default:
		h.log.Warn().Msgf("unhandled packet %v from %v", in.T, pid)
		return
	}
	if err != nil {
		user.log.Debug().Err(err).Msgf("%v failed", in.T)
		user.Notify(api.Error, api.ErrorResponse{Code: session.ErrorCode(err), Message: err.Error()})
	}
}
