package websocket

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/greenroom-live/greenroom/pkg/logger"
)

// echoServer upgrades every request and echoes messages back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.Default()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := DefaultUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		server, err := NewServerWithConn(conn, log)
		if err != nil {
			t.Errorf("server: %v", err)
			return
		}
		server.SetMessageHandler(func(m []byte, err error) {
			if err == nil {
				_ = server.Write(m)
			}
		})
		server.Listen()
	}))
}

func dial(t *testing.T, s *httptest.Server) *WS {
	t.Helper()
	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	u.Scheme = "ws"
	client, err := NewClient(*u, logger.Default())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return client
}

func TestEcho(t *testing.T) {
	s := echoServer(t)
	defer s.Close()
	client := dial(t, s)
	defer client.Close()

	recv := make(chan []byte, 1)
	client.SetMessageHandler(func(m []byte, err error) {
		if err == nil {
			recv <- m
		}
	})
	client.Listen()

	if err := client.Write([]byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case m := <-recv:
		if string(m) != "ping" {
			t.Errorf("echo mangled: %q", m)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no echo")
	}
}

// Messages written by one sender must arrive in write order.
func TestWriteOrderIsPreserved(t *testing.T) {
	s := echoServer(t)
	defer s.Close()
	client := dial(t, s)
	defer client.Close()

	const n = 50
	recv := make(chan string, n)
	client.SetMessageHandler(func(m []byte, err error) {
		if err == nil {
			recv <- string(m)
		}
	})
	client.Listen()

	for i := 0; i < n; i++ {
		if err := client.Write([]byte(fmt.Sprintf("m%03d", i))); err != nil {
			t.Fatalf("write %v: %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		select {
		case m := <-recv:
			if want := fmt.Sprintf("m%03d", i); m != want {
				t.Fatalf("out of order at %v: got %q, want %q", i, m, want)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("only %v of %v messages arrived", i, n)
		}
	}
}

// A consumer that stops draining its queue loses messages after the
// enqueue bound, while other connections keep delivering.
func TestWriteDropsWhenStalled(t *testing.T) {
	old := enqueueWait
	enqueueWait = 50 * time.Millisecond
	defer func() { enqueueWait = old }()

	s := echoServer(t)
	defer s.Close()

	// pumps never started, so nothing drains the send queue
	stalled := dial(t, s)
	defer stalled.Close()
	for i := 0; i < sendQueueLen; i++ {
		if err := stalled.Write([]byte("x")); err != nil {
			t.Fatalf("enqueue %v should succeed, got %v", i, err)
		}
	}
	begin := time.Now()
	if err := stalled.Write([]byte("overflow")); !errors.Is(err, ErrStalled) {
		t.Fatalf("overflow write should fail with ErrStalled, got %v", err)
	}
	if waited := time.Since(begin); waited > time.Second {
		t.Errorf("drop should happen within the enqueue bound, took %v", waited)
	}

	// the healthy connection is unaffected
	live := dial(t, s)
	defer live.Close()
	recv := make(chan []byte, 1)
	live.SetMessageHandler(func(m []byte, err error) {
		if err == nil {
			recv <- m
		}
	})
	live.Listen()
	if err := live.Write([]byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case m := <-recv:
		if string(m) != "ping" {
			t.Errorf("echo mangled: %q", m)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("a stalled peer must not block others")
	}
}
