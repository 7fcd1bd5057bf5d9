package api

import (
	"encoding/json"
	"testing"
)

func TestPacketRoundTrip(t *testing.T) {
	out := Out{Id: "42", T: ChatMessage, Payload: ChatMessageRequest{SessionId: "s1", Text: "hi"}}
	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var in In
	if err := json.Unmarshal(raw, &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.Id != "42" || in.T != ChatMessage {
		t.Errorf("packet header mangled: %+v", in)
	}
	rq := Unwrap[ChatMessageRequest](in.Payload)
	if rq == nil || rq.Text != "hi" {
		t.Errorf("payload mangled: %+v", rq)
	}
}

func TestUnwrapMalformed(t *testing.T) {
	if got := Unwrap[ChatMessageRequest]([]byte(`{"text":`)); got != nil {
		t.Errorf("malformed payloads should unwrap to nil, got %+v", got)
	}
}

func TestSignalRange(t *testing.T) {
	for _, p := range []PT{Offer, Answer, IceCandidate} {
		if !p.IsSignal() {
			t.Errorf("%v should be a signal", p)
		}
	}
	for _, p := range []PT{JoinSession, ChatMessage, SessionEnded, Error} {
		if p.IsSignal() {
			t.Errorf("%v should not be a signal", p)
		}
	}
}
