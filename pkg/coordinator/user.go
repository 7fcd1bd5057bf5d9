package coordinator

import (
	"github.com/greenroom-live/greenroom/pkg/api"
	"github.com/greenroom-live/greenroom/pkg/com"
	"github.com/greenroom-live/greenroom/pkg/logger"
)

// Conn is the transport surface the hub pushes through. One durable
// participant maps to at most one live Conn at a time.
type Conn interface {
	Id() com.Uid
	Notify(t api.PT, payload any)
	Disconnect()
}

// User binds one websocket connection to a durable participant id.
// The id outlives the connection: a reconnecting participant arrives
// as a new User carrying the same pid.
type User struct {
	*com.Client
	pid string
	log *logger.Logger
}

func NewUser(client *com.Client, pid string, log *logger.Logger) *User {
	return &User{
		Client: client,
		pid:    pid,
		log:    log.Extend(log.With().Str("cid", client.Id().Short()).Str("pid", pid)),
	}
}

func (u *User) Pid() string { return u.pid }

func (u *User) Disconnect() {
	u.Client.Close()
	u.log.Debug().Msg("Disconnect")
}
