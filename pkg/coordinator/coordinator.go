package coordinator

import (
	"context"

	"github.com/greenroom-live/greenroom/pkg/config"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/monitoring"
	"github.com/greenroom-live/greenroom/pkg/service"
	"github.com/greenroom-live/greenroom/pkg/store"
)

// Coordinator bundles everything one instance runs: the store, the
// hub with its HTTP front, the janitor and optional monitoring.
type Coordinator struct {
	service.Group
}

func New(conf config.Config, log *logger.Logger) (*Coordinator, error) {
	st, err := store.New(conf.Coordinator.Store.Dir, log)
	if err != nil {
		return nil, err
	}
	hub := NewHub(conf.Coordinator, st, log)
	srv, err := NewServer(conf.Coordinator, hub, log)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{}
	c.Add(srv, NewJanitor(hub, conf.Coordinator.Session, log), &closer{st})
	c.AddIf(conf.Coordinator.Monitoring.IsEnabled(), monitoring.New(conf.Coordinator.Monitoring, "c", log))
	return c, nil
}

// closer tears down the store last, after the traffic-facing services
// already stopped.
type closer struct{ st *store.Store }

func (c *closer) Run() {}
func (c *closer) Shutdown(context.Context) error { return c.st.Close() }
func (c *closer) String() string { return "store" }
