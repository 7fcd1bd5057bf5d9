package api

import "encoding/json"

type JoinSessionRequest struct {
	SessionId string `json:"session_id"`
}

type LeaveSessionRequest = JoinSessionRequest
type StartSessionRequest = JoinSessionRequest
type EndSessionRequest = JoinSessionRequest

// SessionJoinedResponse catches a (re)joining member up: the current
// lifecycle state, the latest code snapshot and who else is present.
type SessionJoinedResponse struct {
	SessionId string   `json:"session_id"`
	State     string   `json:"state"`
	Role      string   `json:"role"`
	Code      string   `json:"code,omitempty"`
	Members   []string `json:"members"`
}

type PeerPayload struct {
	SessionId     string `json:"session_id"`
	ParticipantId string `json:"participant_id"`
}

// Signal carries an opaque webrtc negotiation payload (offer, answer or
// ice candidate). Data is never inspected by the coordinator.
type Signal struct {
	SessionId string          `json:"session_id"`
	From      string          `json:"from,omitempty"`
	Data      json.RawMessage `json:"data"`
}

type CodeChangeRequest struct {
	SessionId string `json:"session_id"`
	Code      string `json:"code"`
}

type CodeUpdatePush struct {
	SessionId string `json:"session_id"`
	From      string `json:"from"`
	Code      string `json:"code"`
}

type CursorRequest struct {
	SessionId string `json:"session_id"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
}

type CursorPush struct {
	SessionId string `json:"session_id"`
	From      string `json:"from"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
}

type ChatMessageRequest struct {
	SessionId string `json:"session_id"`
	Text      string `json:"text"`
}

type ChatMessagePush struct {
	SessionId string `json:"session_id"`
	From      string `json:"from"`
	Text      string `json:"text"`
	SentAt    int64  `json:"sent_at"` // server-assigned, unix ms
}

// SessionLifecyclePush notifies joined members about a recorded
// lifecycle transition.
type SessionLifecyclePush struct {
	SessionId string `json:"session_id"`
	State     string `json:"state"`
	By        string `json:"by"`
	At        int64  `json:"at"` // unix ms
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
