// Package llm implements the chat-completion client against Groq's
// OpenAI-compatible endpoint. Transient failures (429, 5xx, timeout)
// are retried with exponential backoff; everything else fails fast.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/pkg/retry"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

type Groq struct {
	client  *http.Client
	retrier *retry.Retrier
	baseURL string
	apiKey  string

	model       string
	temperature float64
	maxTokens   int
}

func NewGroq(cfg *config.GroqConfig) *Groq {
	retryCfg := retry.NewDefaultConfig()
	retryCfg.Retryable = core.Transient

	return &Groq{
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
		retrier:     retry.NewRetrier(retryCfg),
		baseURL:     defaultBaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (g *Groq) Complete(ctx context.Context, messages []core.Message) (string, error) {
	payload := map[string]any{
		"model":             g.model,
		"temperature":       g.temperature,
		"max_tokens":        g.maxTokens,
		"top_p":             0.9,
		"presence_penalty":  0.15,
		"frequency_penalty": 0.15,
		"messages":          messages,
	}

	var answer string
	err := g.retrier.Do(ctx, func() error {
		var opErr error
		answer, opErr = g.complete(ctx, payload)
		return opErr
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (g *Groq) complete(ctx context.Context, payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		var ne interface{ Timeout() bool }
		if errors.As(err, &ne) && ne.Timeout() {
			return "", &core.StatusError{Status: http.StatusGatewayTimeout, Detail: "request timeout"}
		}
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &core.StatusError{Status: resp.StatusCode, Detail: errorDetail(body)}
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", core.ErrEmptyResponse
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// errorDetail digs the human-readable message out of an error body.
func errorDetail(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return parsed.Message
}
