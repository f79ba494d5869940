package main

import (
	"github.com/code-sigs/go-disco/pkg/config"
	"github.com/code-sigs/go-disco/pkg/discovery"
	_ "github.com/code-sigs/go-disco/pkg/discovery/backend/etcd"
	_ "github.com/code-sigs/go-disco/pkg/discovery/backend/mongo"
	_ "github.com/code-sigs/go-disco/pkg/discovery/backend/redis"
	_ "github.com/code-sigs/go-disco/pkg/discovery/types"
	"github.com/code-sigs/go-disco/pkg/eventbus"
	"github.com/code-sigs/go-disco/pkg/logger"
	"github.com/code-sigs/go-disco/pkg/restapi"
)

// ServerConfig 服务进程配置
type ServerConfig struct {
	Addr    string            `mapstructure:"addr"`
	Debug   bool              `mapstructure:"debug"`
	LogDir  string            `mapstructure:"log_dir"`
	Options discovery.Options `mapstructure:"discovery"`
}

func main() {
	cfg, err := config.LoadConfig[ServerConfig]("", "disco", "disco", "server")
	if err != nil {
		panic(err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Options.AnnounceAddress == "" {
		cfg.Options.AnnounceAddress = discovery.DefaultOptions().AnnounceAddress
	}
	if cfg.LogDir != "" {
		logger.Init(cfg.LogDir)
	}

	disco, err := discovery.New(eventbus.NewLocal(), &cfg.Options)
	if err != nil {
		panic(err)
	}

	server := restapi.New(disco)
	if err := server.Run(cfg.Addr, cfg.Debug); err != nil {
		panic(err)
	}
}
