package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/daobot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"DAOBOT_RUNTIME_PATH" envDefault:".daobot"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"true"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"false"`

	// Health endpoint for the deploy target's probe.
	HealthAddr string `env:"HEALTH_ADDR" envDefault:":10000"`

	// How many prior turns go into each prompt.
	HistoryWindow int `env:"HISTORY_WINDOW" envDefault:"6"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "daobot.db")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}

func (c AppConfig) IsCLISelected() bool {
	return c.EnableCLI
}
