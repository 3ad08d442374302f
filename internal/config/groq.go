package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/daobot/pkg/log"
)

type GroqConfig struct {
	APIKey string `env:"GROQ_API_KEY,required,notEmpty"`
	Model  string `env:"AI_MODEL" envDefault:"llama-3.1-8b-instant"`

	MaxWords    int     `env:"AI_MAX_WORDS" envDefault:"60"`
	Temperature float64 `env:"AI_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"AI_MAX_TOKENS" envDefault:"350"`

	// JSON array of {"user": "...", "assistant": "..."} pairs.
	FewshotsJSON string `env:"AI_FEWSHOTS" envDefault:"[]"`
}

func NewGroqConfig(ctx context.Context) *GroqConfig {
	c := &GroqConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Groq config")
	}
	return c
}
