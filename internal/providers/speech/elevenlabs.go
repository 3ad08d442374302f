// Package speech holds the audio providers: ElevenLabs for synthesis
// and Whisper for transcription.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/internal/core"
)

const elevenURL = "https://api.elevenlabs.io"

// ElevenLabs synthesizes reply audio. Speak renders text with the
// configured default voice; Clone runs the rendered speech through the
// speech-to-speech endpoint seeded with the caller's reference sample,
// so the reply comes back in their voice.
type ElevenLabs struct {
	client  *http.Client
	baseURL string
	apiKey  string

	voiceID      string
	modelID      string
	outputFormat string
	stability    float64
	similarity   float64
}

func NewElevenLabs(cfg *config.ElevenLabsConfig) *ElevenLabs {
	return &ElevenLabs{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:      elevenURL,
		apiKey:       cfg.APIKey,
		voiceID:      cfg.VoiceID,
		modelID:      cfg.ModelID,
		outputFormat: cfg.OutputFormat,
		stability:    cfg.Stability,
		similarity:   cfg.Similarity,
	}
}

func (e *ElevenLabs) Speak(ctx context.Context, text string) ([]byte, error) {
	payload := map[string]any{
		"text":     text,
		"model_id": e.modelID,
		"voice_settings": map[string]float64{
			"stability":        e.stability,
			"similarity_boost": e.similarity,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	path := "/v1/text-to-speech/" + url.PathEscape(e.voiceID) +
		"?output_format=" + url.QueryEscape(e.outputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return e.audio(req)
}

func (e *ElevenLabs) Clone(ctx context.Context, text string, reference core.VoiceReference) ([]byte, error) {
	if len(reference.Audio) == 0 {
		return nil, fmt.Errorf("voice reference: %w", core.ErrNotFound)
	}

	// Speech-to-speech wants source audio, not text, so render the
	// reply with the default voice first and convert that.
	rendered, err := e.Speak(ctx, text)
	if err != nil {
		return nil, err
	}

	var form bytes.Buffer
	w := multipart.NewWriter(&form)

	part, err := w.CreateFormFile("audio", "reply.mp3")
	if err != nil {
		return nil, fmt.Errorf("form file: %w", err)
	}
	if _, err := part.Write(rendered); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}
	_ = w.WriteField("model_id", "eleven_multilingual_sts_v2")
	_ = w.WriteField("voice_settings", fmt.Sprintf(`{"stability":%s,"similarity_boost":%s}`,
		strconv.FormatFloat(e.stability, 'g', -1, 64),
		strconv.FormatFloat(e.similarity, 'g', -1, 64)))
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	voiceID, err := e.addVoice(ctx, reference)
	if err != nil {
		return nil, err
	}
	defer e.removeVoice(context.WithoutCancel(ctx), voiceID)

	path := "/v1/speech-to-speech/" + url.PathEscape(voiceID) +
		"?output_format=" + url.QueryEscape(e.outputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, &form)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return e.audio(req)
}

// addVoice registers the reference sample as a temporary instant-clone
// voice and returns its id. The voice is removed after synthesis.
func (e *ElevenLabs) addVoice(ctx context.Context, reference core.VoiceReference) (string, error) {
	var form bytes.Buffer
	w := multipart.NewWriter(&form)

	_ = w.WriteField("name", core.BotName+" caller clone")
	filename := reference.Filename
	if filename == "" {
		filename = "reference.ogg"
	}
	part, err := w.CreateFormFile("files", filename)
	if err != nil {
		return "", fmt.Errorf("form file: %w", err)
	}
	if _, err := part.Write(reference.Audio); err != nil {
		return "", fmt.Errorf("write sample: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/voices/add", &form)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", wrapTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, body)
	}

	var parsed struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if parsed.VoiceID == "" {
		return "", core.ErrEmptyResponse
	}
	return parsed.VoiceID, nil
}

func (e *ElevenLabs) removeVoice(ctx context.Context, voiceID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		e.baseURL+"/v1/voices/"+url.PathEscape(voiceID), nil)
	if err != nil {
		return
	}
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// audio executes a synthesis request and returns the raw audio bytes.
func (e *ElevenLabs) audio(req *http.Request) ([]byte, error) {
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}
	if len(body) == 0 {
		return nil, core.ErrEmptyResponse
	}
	return body, nil
}

func wrapTransport(err error) error {
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return &core.StatusError{Status: http.StatusGatewayTimeout, Detail: "request timeout"}
	}
	return fmt.Errorf("request: %w", err)
}

func statusError(status int, body []byte) error {
	var parsed struct {
		Detail struct {
			Message string `json:"message"`
		} `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		detail = parsed.Detail.Message
	}
	return &core.StatusError{Status: status, Detail: detail}
}
