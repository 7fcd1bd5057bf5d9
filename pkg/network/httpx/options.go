package httpx

import (
	"time"

	"github.com/greenroom-live/greenroom/pkg/config"
	"github.com/greenroom-live/greenroom/pkg/logger"
)

type Options struct {
	Https       bool
	HttpsCert   string
	HttpsKey    string
	HttpsDomain string

	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *logger.Logger
}

type Option func(*Options)

func newOptions(options ...Option) *Options {
	opts := &Options{
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  500 * time.Second,
		WriteTimeout: 500 * time.Second,
	}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

// IsAutoHttpsCert says whether certificates should be obtained
// automatically (no explicit cert/key files configured).
func (o *Options) IsAutoHttpsCert() bool { return o.HttpsDomain != "" && o.HttpsCert == "" }

func WithLogger(log *logger.Logger) Option { return func(o *Options) { o.Logger = log } }

func WithServerConfig(conf config.Server) Option {
	return func(o *Options) {
		o.Https = conf.Https
		o.HttpsCert = conf.Tls.HttpsCert
		o.HttpsKey = conf.Tls.HttpsKey
		o.HttpsDomain = conf.Tls.Domain
	}
}
