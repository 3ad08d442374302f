package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/internal/service/relay"
	"github.com/sandevgo/daobot/internal/service/voice"
	"github.com/sandevgo/daobot/pkg/log"
)

const baseContextKey = "base_context"

type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	relay    *relay.Relay
	cooldown *voice.Cooldown
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	relaySvc *relay.Relay,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		relay:    relaySvc,
		cooldown: voice.NewCooldown(time.Duration(cfg.CooldownMs) * time.Millisecond),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: drop rapid-fire messages from the same user
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil {
				return next(c)
			}
			if !bot.cooldown.Allow(c.Sender().ID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle("/ai", bot.handleAsk)
	b.Handle("/voice", bot.handleDesignateVoice)
	b.Handle(tele.OnVoice, bot.handleVoice)
	b.Handle(tele.OnAudio, bot.handleAudio)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(core.BotName + " online.\nUse /ai <your question> or send a voice note — I reply with text and voice.")
}

// handleAsk serves /ai <question>. With no payload but replying to a
// voice or audio message, that attachment is transcribed and used as
// the question.
func (b *Bot) handleAsk(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	q := strings.TrimSpace(c.Message().Payload)

	if q == "" && c.Message().ReplyTo != nil {
		fileID, fallback := attachedFile(c.Message().ReplyTo)
		if fileID != "" {
			audio, filename, err := b.downloadFile(ctx, fileID, fallback)
			if err != nil {
				logger.Error().Err(err).Msg("reply-to download failed")
				return c.Send("Couldn't read the replied voice/audio. Try again or type your question.")
			}
			transcript, answer, err := b.relay.AskVoice(ctx, sessionID(c), audio, filename)
			if err != nil {
				return b.sendFailure(c, err)
			}
			logger.Debug().Str("transcript", transcript).Msg("reply-to voice transcribed")
			return b.replyTextAndVoice(ctx, c, answer)
		}
	}

	if q == "" {
		return c.Send("Usage: /ai <your question> or reply to a voice note with /ai")
	}

	_ = c.Notify(tele.Typing)

	answer, err := b.relay.Ask(ctx, sessionID(c), q)
	if err != nil {
		return b.sendFailure(c, err)
	}
	return b.replyTextAndVoice(ctx, c, answer)
}

// handleDesignateVoice pins the replied-to voice/audio message as the
// caller's cloning reference.
func (b *Bot) handleDesignateVoice(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)

	if c.Message().ReplyTo == nil {
		return c.Send("Reply to a voice note with /voice to use it as your voice.")
	}
	fileID, fallback := attachedFile(c.Message().ReplyTo)
	if fileID == "" {
		return c.Send("That message has no voice or audio attached.")
	}

	audio, filename, err := b.downloadFile(ctx, fileID, fallback)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("voice reference download failed")
		return c.Send("Couldn't read that voice note. Try again.")
	}

	b.relay.CaptureVoice(c.Sender().ID, audio, filename)
	return c.Send("Got it — replies will use your voice for the next 30 minutes.")
}

// handleVoice answers a voice note: transcribe, ask, reply with text
// and voice. The note doubles as the caller's cloning reference.
func (b *Bot) handleVoice(c tele.Context) error {
	return b.handleSpoken(c, c.Message().Voice.FileID, "voice.ogg")
}

func (b *Bot) handleAudio(c tele.Context) error {
	fallback := c.Message().Audio.FileName
	if fallback == "" {
		fallback = "audio.mp3"
	}
	return b.handleSpoken(c, c.Message().Audio.FileID, fallback)
}

func (b *Bot) handleSpoken(c tele.Context, fileID, fallback string) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	audio, filename, err := b.downloadFile(ctx, fileID, fallback)
	if err != nil {
		logger.Error().Err(err).Msg("voice download failed")
		return c.Send("Voice processing failed: could not fetch the audio.")
	}

	b.relay.CaptureVoice(c.Sender().ID, audio, filename)

	transcript, answer, err := b.relay.AskVoice(ctx, sessionID(c), audio, filename)
	if err != nil {
		logger.Error().Err(err).Str("transcript", transcript).Msg("voice handler failed")
		return b.sendFailure(c, err)
	}
	return b.replyTextAndVoice(ctx, c, answer)
}

func (b *Bot) sendFailure(c tele.Context, err error) error {
	if errors.Is(err, core.ErrRateLimited) {
		return c.Send(core.BotName + " is rate-limited. Try again shortly.")
	}
	return c.Send(fmt.Sprintf("error: %v", err))
}

// attachedFile returns the file id of a voice or audio attachment and
// a fallback filename, or "" when the message carries neither.
func attachedFile(m *tele.Message) (fileID, fallback string) {
	switch {
	case m.Voice != nil:
		return m.Voice.FileID, "voice.ogg"
	case m.Audio != nil:
		fallback = m.Audio.FileName
		if fallback == "" {
			fallback = "audio.mp3"
		}
		return m.Audio.FileID, fallback
	}
	return "", ""
}

func sessionID(c tele.Context) string {
	return fmt.Sprintf("telegram-%d", c.Chat().ID)
}

func displayName(u *tele.User) string {
	if u == nil {
		return "friend"
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return "friend"
}
