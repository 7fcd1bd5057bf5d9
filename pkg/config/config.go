package config

import (
	"time"

	flag "github.com/spf13/pflag"
)

type (
	Config struct {
		Coordinator Coordinator
	}
	Coordinator struct {
		Debug      bool   `fig:"debug"`
		Origin     string `fig:"origin" default:"*"`
		Server     Server
		Monitoring Monitoring
		Session    Session
		Store      Store
	}
	Server struct {
		Address string `fig:"address" default:":8000"`
		Https   bool   `fig:"https"`
		Tls     Tls
	}
	Tls struct {
		Address   string `fig:"address" default:":443"`
		Domain    string `fig:"domain"`
		HttpsCert string `fig:"httpsCert"`
		HttpsKey  string `fig:"httpsKey"`
	}
	// Session holds the coordinator's timing knobs: how long a detached
	// participant keeps their membership and how long a terminal session
	// stays resident before the janitor reclaims it.
	Session struct {
		GraceWindow time.Duration `fig:"graceWindow" default:"45s"`
		Retention   time.Duration `fig:"retention" default:"1h"`
	}
	Store struct {
		Dir string `fig:"dir"`
	}
	Monitoring struct {
		Port             int    `fig:"port" default:"6601"`
		URLPrefix        string `fig:"urlPrefix" default:"/coordinator"`
		MetricEnabled    bool   `fig:"metric"`
		ProfilingEnabled bool   `fig:"pprof"`
	}
)

func (m Monitoring) IsEnabled() bool { return m.MetricEnabled || m.ProfilingEnabled }

// NewConfig loads the config file (if any), environment and defaults.
func NewConfig() (conf Config) {
	if err := LoadConfig(&conf, ""); err != nil {
		panic(err)
	}
	return
}

func (c *Config) ParseFlags() {
	c.Coordinator.AddFlags(flag.CommandLine)
	flag.Parse()
}

func (c *Coordinator) AddFlags(fs *flag.FlagSet) *Coordinator {
	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "Enable debug logging")
	fs.StringVarP(&c.Server.Address, "address", "a", c.Server.Address, "Server address")
	fs.StringVarP(&c.Store.Dir, "store", "", c.Store.Dir, "Data directory (empty for in-memory store)")
	return c
}
