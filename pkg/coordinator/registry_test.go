package coordinator

import (
	"testing"
	"time"

	"github.com/greenroom-live/greenroom/pkg/logger"
)

func TestAttachReplacesConnection(t *testing.T) {
	r := NewRegistry(logger.Default())

	first := newFakeConn()
	if prev := r.Attach("alice", first); prev != nil {
		t.Fatalf("first attach should have no predecessor")
	}
	second := newFakeConn()
	prev := r.Attach("alice", second)
	if prev != first {
		t.Fatalf("reattach should hand back the old connection")
	}
	if got := r.Resolve("alice"); got != second {
		t.Errorf("the newest connection should win")
	}
}

func TestStaleDetachIsIgnored(t *testing.T) {
	r := NewRegistry(logger.Default())

	old := newFakeConn()
	r.Attach("alice", old)
	fresh := newFakeConn()
	r.Attach("alice", fresh)

	// the old connection tears down after the reconnect
	r.Detach("alice", old.Id())
	if got := r.Resolve("alice"); got != fresh {
		t.Errorf("a stale teardown must not knock out the fresh connection")
	}

	r.Detach("alice", fresh.Id())
	if got := r.Resolve("alice"); got != nil {
		t.Errorf("detached participants should resolve to nil")
	}
}

func TestExpireKeepsGraceWindow(t *testing.T) {
	r := NewRegistry(logger.Default())

	conn := newFakeConn()
	r.Attach("alice", conn)
	r.setSession("alice", "s1")
	r.Detach("alice", conn.Id())

	if got := r.expire(time.Minute); len(got) != 0 {
		t.Fatalf("bindings within the grace window must survive, got %v", got)
	}
	got := r.expire(0)
	if len(got) != 1 || got[0].pid != "alice" || got[0].session != "s1" {
		t.Fatalf("expired bindings should report their membership, got %v", got)
	}
	if r.expire(0) != nil {
		t.Errorf("expire should be exhaustive")
	}
}

func TestDetachWithoutSessionForgets(t *testing.T) {
	r := NewRegistry(logger.Default())

	conn := newFakeConn()
	r.Attach("alice", conn)
	r.Detach("alice", conn.Id())
	if got := r.expire(0); len(got) != 0 {
		t.Errorf("a binding with no membership leaves nothing behind, got %v", got)
	}
}
