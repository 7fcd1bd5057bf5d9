package coordinator

import (
	"context"

	"github.com/greenroom-live/greenroom/pkg/config"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/service"
	"github.com/robfig/cron/v3"
)

// Janitor periodically turns expired disconnect grace windows into
// effective leaves and evicts idle terminal rooms.
type Janitor struct {
	service.RunnableService

	hub  *Hub
	conf config.Session
	cron *cron.Cron
	log  *logger.Logger
}

func NewJanitor(hub *Hub, conf config.Session, log *logger.Logger) *Janitor {
	return &Janitor{hub: hub, conf: conf, cron: cron.New(), log: log}
}

func (j *Janitor) Run() {
	if _, err := j.cron.AddFunc("@every 30s", j.sweep); err != nil {
		j.log.Error().Err(err).Msg("janitor schedule fail")
		return
	}
	j.cron.Start()
}

func (j *Janitor) sweep() {
	for _, e := range j.hub.registry.expire(j.conf.GraceWindow) {
		j.log.Debug().Msgf("grace window of %v expired in session %v", e.pid, e.session)
		_ = j.hub.Leave(e.pid, e.session)
	}
	j.hub.reclaim(j.conf.Retention)
	metricActiveSessions.Set(float64(j.hub.rooms.Len()))
}

func (j *Janitor) Shutdown(context.Context) error {
	j.cron.Stop()
	return nil
}

func (j *Janitor) String() string { return "janitor" }
