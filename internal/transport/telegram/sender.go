package telegram

import (
	"bytes"
	"context"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/pkg/conv"
	"github.com/sandevgo/daobot/pkg/log"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

// replyTextAndVoice sends the prefixed answer as text, then follows up
// with the synthesized audio. Synthesis failure degrades to text-only.
func (b *Bot) replyTextAndVoice(ctx context.Context, c tele.Context, answer string) error {
	logger := log.FromCtx(ctx)

	text := "Waka Waka " + displayName(c.Sender()) + "! " + answer
	if err := b.sendMarkdown(ctx, c, text); err != nil {
		return err
	}

	audio, err := b.relay.Speak(ctx, c.Sender().ID, text)
	if err != nil {
		logger.Error().Err(err).Msg("speech synthesis failed")
		return c.Send("TTS error: reply sent as text only.")
	}

	reply := &tele.Audio{
		File:     tele.FromReader(bytes.NewReader(audio)),
		FileName: "reply.mp3",
		Title:    core.BotName,
	}
	if err := c.Send(reply); err != nil {
		logger.Error().Err(err).Msg("failed to send audio reply")
		return err
	}
	return nil
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
func (b *Bot) sendMarkdown(ctx context.Context, c tele.Context, md string) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))

	for i, chunk := range splitHTML(html, maxTelegramMsgLen) {
		if err := c.Send(chunk, tele.ModeHTML, tele.NoPreview); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		// Try to find a good break point (newline) in the second half of the chunk
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
