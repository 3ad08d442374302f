// Package relay orchestrates a full conversational turn: ground the
// query with live facts, assemble the prompt, get the completion,
// persist both sides of the exchange, and synthesize the voice reply.
package relay

import (
	"context"
	"fmt"

	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/internal/service/facts"
	"github.com/sandevgo/daobot/internal/service/prompt"
	"github.com/sandevgo/daobot/internal/service/voice"
	"github.com/sandevgo/daobot/pkg/conv"
	"github.com/sandevgo/daobot/pkg/log"
)

type HistoryRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg core.Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]core.Message, error)
}

type Relay struct {
	assembler   *facts.Assembler
	builder     *prompt.Builder
	completer   core.Completer
	transcriber core.Transcriber
	synthesizer core.Synthesizer
	voices      *voice.Store
	repo        HistoryRepository

	historyWindow int
}

func NewRelay(
	assembler *facts.Assembler,
	builder *prompt.Builder,
	completer core.Completer,
	transcriber core.Transcriber,
	synthesizer core.Synthesizer,
	voices *voice.Store,
	repo HistoryRepository,
	historyWindow int,
) *Relay {
	return &Relay{
		assembler:     assembler,
		builder:       builder,
		completer:     completer,
		transcriber:   transcriber,
		synthesizer:   synthesizer,
		voices:        voices,
		repo:          repo,
		historyWindow: historyWindow,
	}
}

// Ask runs a text query through grounding, completion, and history.
// The returned string is the raw model answer; voice synthesis is a
// separate step so transports can send text first.
func (r *Relay) Ask(ctx context.Context, sessionID string, query string) (string, error) {
	logger := log.FromCtx(ctx)

	factBlock := r.assembler.Build(ctx, query)

	history, err := r.repo.GetMessages(ctx, sessionID, r.historyWindow)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch history")
		history = nil
	}

	messages, err := r.builder.BuildMessages(query, history, factBlock)
	if err != nil {
		return "", err
	}
	prompt.LogTokenEstimate(ctx, messages)

	answer, err := r.completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}

	if err := r.repo.AddMessage(ctx, sessionID, core.Message{Role: core.RoleUser, Content: query}); err != nil {
		logger.Error().Err(err).Msg("failed to save user message")
	}
	if err := r.repo.AddMessage(ctx, sessionID, core.Message{Role: core.RoleAssistant, Content: answer}); err != nil {
		logger.Error().Err(err).Msg("failed to save assistant message")
	}

	return answer, nil
}

// AskVoice transcribes the audio first, then runs the transcript
// through Ask. Returns the transcript alongside the answer so the
// transport can echo what was understood.
func (r *Relay) AskVoice(ctx context.Context, sessionID string, audio []byte, filename string) (transcript, answer string, err error) {
	transcript, err = r.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", "", fmt.Errorf("transcription: %w", err)
	}

	answer, err = r.Ask(ctx, sessionID, transcript)
	if err != nil {
		return transcript, "", err
	}
	return transcript, answer, nil
}

// Speak synthesizes the reply audio. When the user has a fresh voice
// reference on file the reply is cloned into their voice, otherwise
// the default voice speaks. Markdown fences and URLs are stripped
// first so the model's formatting is not read aloud.
func (r *Relay) Speak(ctx context.Context, userID int64, text string) ([]byte, error) {
	speech := conv.StripForSpeech(text)
	if speech == "" {
		return nil, core.ErrEmptyResponse
	}

	if ref := r.voices.Get(userID); ref != nil {
		audio, err := r.synthesizer.Clone(ctx, speech, *ref)
		if err == nil {
			return audio, nil
		}
		// Cloning is cosmetic; fall back to the default voice.
		log.FromCtx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("voice clone failed, using default voice")
	}

	return r.synthesizer.Speak(ctx, speech)
}

// CaptureVoice stores the sample as the user's reference for cloned
// replies. Overwrites any previous capture.
func (r *Relay) CaptureVoice(userID int64, audio []byte, filename string) {
	r.voices.Put(userID, audio, filename)
}
