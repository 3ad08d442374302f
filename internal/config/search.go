package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/daobot/pkg/log"
)

// SearchConfig carries keys for the web search chain. All keys are
// optional: with none set the bot falls back to DuckDuckGo, and search
// can be disabled entirely.
type SearchConfig struct {
	Enabled bool `env:"ENABLE_WEB_SEARCH" envDefault:"true"`

	SerperAPIKey string `env:"SERPER_API_KEY"`
	TavilyAPIKey string `env:"TAVILY_API_KEY"`
	BraveAPIKey  string `env:"BRAVE_API_KEY"`
}

func NewSearchConfig(ctx context.Context) *SearchConfig {
	c := &SearchConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Search config")
	}
	return c
}
