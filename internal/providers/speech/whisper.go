package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/internal/core"
)

// Whisper transcribes voice notes through OpenAI's audio API. Telegram
// hands us OGG/OPUS; Whisper sniffs the format from the filename.
type Whisper struct {
	client *openai.Client
	model  string
}

func NewWhisper(cfg *config.OpenAIConfig) *Whisper {
	return &Whisper{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

func (w *Whisper) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcribe: empty audio")
	}
	if filename == "" {
		filename = "voice.ogg"
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       w.model,
		Reader:      bytes.NewReader(audio),
		FilePath:    filename,
		Format:      openai.AudioResponseFormatText,
		Temperature: 0,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &core.StatusError{Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
		}
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", core.ErrEmptyResponse
	}
	return text, nil
}
