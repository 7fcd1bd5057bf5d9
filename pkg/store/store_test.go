package store

import (
	"errors"
	"testing"
	"time"

	"github.com/greenroom-live/greenroom/pkg/com"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/session"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := New("", logger.Default())
	if err != nil {
		t.Fatalf("couldn't open in-memory store: %v", err)
	}
	return st
}

func seed(t *testing.T, st *Store) string {
	t.Helper()
	id := com.NewUid().String()
	err := st.CreateSession(&Session{
		ID:          id,
		ScheduledAt: time.Now().Add(time.Hour),
		Duration:    45 * time.Minute,
		Participants: []Participant{
			{SessionID: id, ParticipantID: "alice", Role: string(session.Interviewer)},
			{SessionID: id, ParticipantID: "bob", Role: string(session.Candidate)},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return id
}

func TestSessionRoundTrip(t *testing.T) {
	st := testStore(t)
	id := seed(t, st)

	rec, err := st.GetSession(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Status != string(session.Scheduled) {
		t.Errorf("new sessions should default to scheduled, got %v", rec.Status)
	}
	if len(rec.Participants) != 2 {
		t.Errorf("expected 2 participants, got %v", len(rec.Participants))
	}

	if err := st.CreateSession(&Session{ID: id}); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate id should fail with ErrExists, got %v", err)
	}
	if _, err := st.GetSession("no-such"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("unknown id should fail with ErrSessionNotFound, got %v", err)
	}
}

func TestTransitionIsAtomic(t *testing.T) {
	st := testStore(t)
	id := seed(t, st)
	now := time.Now()

	if err := st.RecordTransition(id, session.Scheduled, session.InProgress, "alice", now); err != nil {
		t.Fatalf("start: %v", err)
	}
	// stale from state must change nothing
	err := st.RecordTransition(id, session.Scheduled, session.InProgress, "alice", now)
	if !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("stale transition should fail with ErrInvalidTransition, got %v", err)
	}
	rec, _ := st.GetSession(id)
	if rec.Status != string(session.InProgress) {
		t.Errorf("failed transition must not move the state, got %v", rec.Status)
	}
	if rec.StartedAt == nil {
		t.Errorf("start should stamp StartedAt")
	}

	if err := st.RecordTransition(id, session.InProgress, session.Completed, "alice", now); err != nil {
		t.Fatalf("end: %v", err)
	}
	rec, _ = st.GetSession(id)
	if rec.EndedAt == nil {
		t.Errorf("end should stamp EndedAt")
	}

	log, err := st.Transitions(id)
	if err != nil {
		t.Fatalf("transitions: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 recorded transitions, got %v", len(log))
	}
	if log[0].ToStatus != string(session.InProgress) || log[1].ToStatus != string(session.Completed) {
		t.Errorf("transition log out of order: %+v", log)
	}

	err = st.RecordTransition("no-such", session.Scheduled, session.InProgress, "alice", now)
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("unknown id should fail with ErrSessionNotFound, got %v", err)
	}
}

func TestMessagesAfter(t *testing.T) {
	st := testStore(t)
	id := seed(t, st)

	base := time.Now().Truncate(time.Millisecond)
	for i, text := range []string{"hello", "hi", "ready?"} {
		if _, err := st.AppendMessage(id, "alice", text, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := st.Messages(id, time.Time{})
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %v", len(all))
	}
	if all[0].Body != "hello" || all[2].Body != "ready?" {
		t.Errorf("messages out of send order: %+v", all)
	}

	tail, err := st.Messages(id, base.Add(time.Second))
	if err != nil {
		t.Fatalf("messages after: %v", err)
	}
	if len(tail) != 1 || tail[0].Body != "ready?" {
		t.Errorf("expected only the last message, got %+v", tail)
	}
}
