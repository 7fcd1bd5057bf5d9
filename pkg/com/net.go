package com

import (
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/greenroom-live/greenroom/pkg/api"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/network/websocket"
)

type (
	// Connector upgrades HTTP requests into packet clients.
	Connector struct {
		tag string
		wu  *websocket.Upgrader
	}
	// Client is a typed JSON packet pipe over one websocket connection.
	Client struct {
		id       Uid
		conn     *websocket.WS
		queue    map[string]*call
		onPacket func(packet api.In)
		mu       sync.Mutex
		log      *logger.Logger
	}
	call struct {
		done     chan struct{}
		err      error
		response api.In
	}
	Option = func(c *Connector)
)

var (
	errConnClosed = errors.New("connection closed")
	errTimeout    = errors.New("timeout")
)

var outPool = sync.Pool{New: func() any { o := api.Out{}; return &o }}

var callTimeout = 5 * time.Second

func WithOrigin(origin string) Option {
	return func(c *Connector) { c.wu = websocket.NewUpgrader(origin) }
}
func WithTag(tag string) Option { return func(c *Connector) { c.tag = tag } }

func NewConnector(opts ...Option) *Connector {
	c := &Connector{}
	for _, opt := range opts {
		opt(c)
	}
	if c.wu == nil {
		c.wu = &websocket.DefaultUpgrader
	}
	return c
}

func (co *Connector) NewServer(w http.ResponseWriter, r *http.Request, log *logger.Logger) (*Client, error) {
	ws, err := co.wu.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn, err := websocket.NewServerWithConn(ws, log)
	if err != nil {
		return nil, err
	}
	return connect(conn, log), nil
}

func NewClient(address url.URL, log *logger.Logger) (*Client, error) {
	conn, err := websocket.NewClient(address, log)
	if err != nil {
		return nil, err
	}
	return connect(conn, log), nil
}

func connect(conn *websocket.WS, log *logger.Logger) *Client {
	id := NewUid()
	dir := "→"
	if conn.IsServer() {
		dir = "←"
	}
	cl := log.Extend(log.With().
		Str("cid", id.Short()).
		Str(logger.DirectionField, dir))
	cl.Debug().Msg("Connect")
	client := &Client{id: id, conn: conn, queue: make(map[string]*call, 1), log: cl}
	client.conn.SetMessageHandler(client.handleMessage)
	return client
}

func (c *Client) Id() Uid        { return c.id }
func (c *Client) IsServer() bool { return c.conn.IsServer() }
func (c *Client) String() string { return c.id.String() }

func (c *Client) OnPacket(fn func(packet api.In)) { c.mu.Lock(); c.onPacket = fn; c.mu.Unlock() }

// Listen starts the connection pumps and returns its teardown channel.
func (c *Client) Listen() chan struct{} { return c.conn.Listen() }

func (c *Client) Close() {
	c.conn.Close()
	c.drain(errConnClosed)
	c.log.Debug().Str(logger.DirectionField, "x").Msg("Close")
}

// Call makes a blocking request and waits for the response with the
// matching packet id.
func (c *Client) Call(t api.PT, payload any) ([]byte, error) {
	c.log.Debug().Str(logger.DirectionField, "→").Msgf("ᵇ%v", t)
	rq := outPool.Get().(*api.Out)
	id := NewUid().String()
	rq.Id, rq.T, rq.Payload = id, t, payload
	r, err := json.Marshal(rq)
	outPool.Put(rq)
	if err != nil {
		return nil, err
	}

	task := &call{done: make(chan struct{})}
	c.mu.Lock()
	c.queue[id] = task
	c.mu.Unlock()
	if err := c.conn.Write(r); err != nil {
		c.pop(id)
		return nil, err
	}
	select {
	case <-task.done:
	case <-time.After(callTimeout):
		// claim the task back; losing the claim means the response
		// landed mid-timeout, take it instead
		if c.pop(id) != nil {
			task.err = errTimeout
		} else {
			<-task.done
		}
	}
	return task.response.Payload, task.err
}

// Notify just sends a message and goes further.
func (c *Client) Notify(t api.PT, payload any) {
	c.log.Debug().Str(logger.DirectionField, "→").Msgf("%v", t)
	rq := outPool.Get().(*api.Out)
	defer outPool.Put(rq)
	rq.Id, rq.T, rq.Payload = "", t, payload
	_ = c.send(rq)
}

// Route replies to the packet in keeping its id, so the other side can
// match the response to its pending call.
func (c *Client) Route(in api.In, t api.PT, payload any) {
	c.log.Debug().Str(logger.DirectionField, "→").Msgf("%v", t)
	rq := outPool.Get().(*api.Out)
	defer outPool.Put(rq)
	rq.Id, rq.T, rq.Payload = in.Id, t, payload
	_ = c.send(rq)
}

func (c *Client) send(packet *api.Out) error {
	r, err := json.Marshal(packet)
	if err != nil {
		return err
	}
	return c.conn.Write(r)
}

func (c *Client) handleMessage(message []byte, err error) {
	if err != nil {
		return
	}
	var res api.In
	if err = json.Unmarshal(message, &res); err != nil {
		c.log.Error().Err(err).Msg("malformed packet")
		return
	}
	// empty id implies that we won't track (wait) the response
	if res.Id != "" {
		if task := c.pop(res.Id); task != nil {
			task.response = res
			close(task.done)
			return
		}
	}
	c.log.Debug().Str(logger.DirectionField, "←").Msgf("%v", res.T)
	c.mu.Lock()
	fn := c.onPacket
	c.mu.Unlock()
	if fn != nil {
		fn(res)
	}
}

// pop extracts and removes a task from the queue by its id.
func (c *Client) pop(id string) *call {
	c.mu.Lock()
	task := c.queue[id]
	delete(c.queue, id)
	c.mu.Unlock()
	return task
}

// drain cancels all what's left in the task queue.
func (c *Client) drain(err error) {
	c.mu.Lock()
	for id, task := range c.queue {
		if task.err == nil {
			task.err = err
		}
		close(task.done)
		delete(c.queue, id)
	}
	c.mu.Unlock()
}
