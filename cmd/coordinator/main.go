package main

import (
	"context"
	"time"

	"github.com/greenroom-live/greenroom/pkg/config"
	"github.com/greenroom-live/greenroom/pkg/coordinator"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/os"
)

var Version = "dev"

func main() {
	conf := config.NewConfig()
	conf.ParseFlags()

	log := logger.NewConsole(conf.Coordinator.Debug, "c", false)
	log.Info().Msgf("version %v", Version)
	log.Debug().Msgf("config: %+v", conf)

	c, err := coordinator.New(conf, log)
	if err != nil {
		log.Fatal().Err(err).Msg("coordinator init fail")
	}
	c.Start()

	<-os.ExpectTermination()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("service shutdown errors")
	}
}
