package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/daobot/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`

	// Messages from the same user closer than this are dropped.
	CooldownMs int `env:"TELEGRAM_COOLDOWN_MS" envDefault:"500"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
