// Package api defines the coordinator wire API.
//
// Each call (request and response) is a JSON-encoded packet of the following
// structure:
//
//	id - (optional) a unique packet id for tracking request/response pairs;
//	 t - (required) one of the predefined packet types;
//	 p - (optional) packet payload with arbitrary data.
//
// Packets differentiate by type, with which it is possible to unwrap the
// payload into distinct request/response data structures. Signaling packets
// (offer/answer/ice-candidate) keep their payload opaque: the coordinator
// relays them verbatim and the peers own their semantics.
package api

import (
	"encoding/json"
	"fmt"
)

type PT uint8

// Packet codes:
//
//	1x - membership
//	2x - webrtc signaling (relayed verbatim)
//	3x - collaboration events
//	4x - session lifecycle
//	9x - errors
const (
	JoinSession    PT = 10
	LeaveSession   PT = 11
	SessionJoined  PT = 12
	PeerJoined     PT = 13
	PeerLeft       PT = 14
	Offer          PT = 20
	Answer         PT = 21
	IceCandidate   PT = 22
	CodeChange     PT = 30
	Cursor         PT = 31
	ChatMessage    PT = 32
	CodeUpdate     PT = 33
	ChatReceived   PT = 34
	CursorUpdate   PT = 35
	StartSession   PT = 40
	EndSession     PT = 41
	SessionStarted PT = 42
	SessionEnded   PT = 43
	Error          PT = 90
)

func (p PT) String() string {
	switch p {
	case JoinSession:
		return "JoinSession"
	case LeaveSession:
		return "LeaveSession"
	case SessionJoined:
		return "SessionJoined"
	case PeerJoined:
		return "PeerJoined"
	case PeerLeft:
		return "PeerLeft"
	case Offer:
		return "Offer"
	case Answer:
		return "Answer"
	case IceCandidate:
		return "IceCandidate"
	case CodeChange:
		return "CodeChange"
	case Cursor:
		return "Cursor"
	case ChatMessage:
		return "ChatMessage"
	case CodeUpdate:
		return "CodeUpdate"
	case ChatReceived:
		return "ChatReceived"
	case CursorUpdate:
		return "CursorUpdate"
	case StartSession:
		return "StartSession"
	case EndSession:
		return "EndSession"
	case SessionStarted:
		return "SessionStarted"
	case SessionEnded:
		return "SessionEnded"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsSignal says whether the packet type belongs to the relayed
// webrtc signaling range.
func (p PT) IsSignal() bool { return p == Offer || p == Answer || p == IceCandidate }

type In struct {
	Id      string          `json:"id,omitempty"`
	T       PT              `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"` // json.RawMessage for 2-pass unmarshal
}

type Out struct {
	Id      string `json:"id,omitempty"`
	T       PT     `json:"t"`
	Payload any    `json:"p,omitempty"`
}

var ErrMalformed = fmt.Errorf("malformed")

func Unwrap[T any](data []byte) *T {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}
