package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/daobot/pkg/log"
)

type ElevenLabsConfig struct {
	APIKey  string `env:"ELEVENLABS_API_KEY,required,notEmpty"`
	VoiceID string `env:"ELEVEN_VOICE_ID,required,notEmpty"`

	ModelID      string `env:"ELEVEN_MODEL_ID" envDefault:"eleven_multilingual_v2"`
	OutputFormat string `env:"ELEVEN_OUTPUT_FORMAT" envDefault:"mp3_44100_128"`

	Stability  float64 `env:"ELEVEN_STABILITY" envDefault:"0.7"`
	Similarity float64 `env:"ELEVEN_SIMILARITY" envDefault:"0.35"`
}

func NewElevenLabsConfig(ctx context.Context) *ElevenLabsConfig {
	c := &ElevenLabsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse ElevenLabs config")
	}
	return c
}
