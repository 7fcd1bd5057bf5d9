package websocket

import (
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/greenroom-live/greenroom/pkg/logger"
)

const (
	maxMessageSize = 10 * 1024
	pongTime       = 60 * time.Second
	pingTime       = pongTime * 9 / 10
	writeWait      = 10 * time.Second
	sendQueueLen   = 64
)

// enqueueWait bounds how long a Write may wait on a stalled consumer
// before the message is dropped.
var enqueueWait = 5 * time.Second

var (
	ErrClosed  = errors.New("connection closed")
	ErrStalled = errors.New("send queue stalled")
)

type MessageHandler func(message []byte, err error)

// WS wraps a single websocket connection with read/write pumps.
// All reads are serialized in the reader, all writes in the writer;
// Write only enqueues and never touches the socket directly.
type WS struct {
	conn    *websocket.Conn
	send    chan []byte
	handler MessageHandler

	server bool

	quit chan struct{}
	done chan struct{}
	once sync.Once

	log *logger.Logger
}

type Upgrader struct {
	websocket.Upgrader
}

var DefaultUpgrader = Upgrader{websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	WriteBufferPool: &sync.Pool{},
}}

// NewUpgrader returns an upgrader which accepts only the given origin,
// or any origin when origin is *.
func NewUpgrader(origin string) *Upgrader {
	u := Upgrader{websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		WriteBufferPool: &sync.Pool{},
	}}
	if origin == "*" {
		u.CheckOrigin = func(r *http.Request) bool { return true }
	} else {
		u.CheckOrigin = func(r *http.Request) bool { return r.Header.Get("Origin") == origin }
	}
	return &u
}

func NewServerWithConn(conn *websocket.Conn, log *logger.Logger) (*WS, error) {
	if conn == nil {
		return nil, errors.New("no connection")
	}
	return newSocket(conn, true, log), nil
}

func NewClient(address url.URL, log *logger.Logger) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.Dial(address.String(), nil)
	if err != nil {
		return nil, err
	}
	return newSocket(conn, false, log), nil
}

func newSocket(conn *websocket.Conn, server bool, log *logger.Logger) *WS {
	return &WS{
		conn:   conn,
		send:   make(chan []byte, sendQueueLen),
		server: server,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		log:    log,
	}
}

func (ws *WS) IsServer() bool { return ws.server }

func (ws *WS) SetMessageHandler(fn MessageHandler) { ws.handler = fn }

// Listen starts the read/write pumps and returns a channel closed on teardown.
func (ws *WS) Listen() chan struct{} {
	go ws.writer()
	go ws.reader()
	return ws.done
}

// Write enqueues a message for delivery waiting at most enqueueWait.
// A stalled or closed connection drops the message with an error, so
// one slow consumer can't block the caller.
func (ws *WS) Write(data []byte) error {
	select {
	case ws.send <- data:
		return nil
	case <-ws.quit:
		return ErrClosed
	case <-time.After(enqueueWait):
		return ErrStalled
	}
}

func (ws *WS) Close() {
	_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.conn.WriteMessage(websocket.CloseMessage, []byte{})
	ws.teardown()
}

func (ws *WS) reader() {
	defer ws.teardown()
	ws.conn.SetReadLimit(maxMessageSize)
	if ws.server {
		_ = ws.conn.SetReadDeadline(time.Now().Add(pongTime))
		ws.conn.SetPongHandler(func(string) error {
			return ws.conn.SetReadDeadline(time.Now().Add(pongTime))
		})
	}
	for {
		_, message, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ws.log.Error().Err(err).Msg("ws read")
			}
			return
		}
		if ws.handler != nil {
			ws.handler(message, nil)
		}
	}
}

func (ws *WS) writer() {
	var ping <-chan time.Time
	if ws.server {
		ticker := time.NewTicker(pingTime)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer ws.teardown()
	for {
		select {
		case message := <-ws.send:
			_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ping:
			_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ws.quit:
			return
		}
	}
}

func (ws *WS) teardown() {
	ws.once.Do(func() {
		close(ws.quit)
		_ = ws.conn.Close()
		close(ws.done)
	})
}
