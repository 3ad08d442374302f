// Package prompt assembles the ordered message list sent to the
// completion provider. The ordering (system turns, few-shot pairs,
// recent history, new user turn) is load-bearing for instruction
// following and must not be rearranged.
package prompt

import (
	"context"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/pkg/log"
)

const (
	// HistoryWindow is how many trailing history turns survive; older
	// turns are dropped, not summarized.
	HistoryWindow = 6

	// MaxQueryLen bounds the final user turn.
	MaxQueryLen = 4000
)

type Builder struct {
	system   string
	fewshots []core.Message
	window   int
}

func NewBuilder(maxWords int, fewshotsJSON string) *Builder {
	return &Builder{
		system:   Persona + " " + Rules(maxWords),
		fewshots: ParseFewshots(fewshotsJSON),
		window:   HistoryWindow,
	}
}

// BuildMessages composes the conversation for one request. facts may be
// empty, in which case no facts turn is added.
func (b *Builder) BuildMessages(query string, history []core.Message, facts string) ([]core.Message, error) {
	content := strings.TrimSpace(query)
	if content == "" {
		return nil, core.ErrEmptyQuery
	}
	if len(content) > MaxQueryLen {
		content = content[:MaxQueryLen]
	}

	if len(history) > b.window {
		history = history[len(history)-b.window:]
	}

	msgs := make([]core.Message, 0, 2+len(b.fewshots)+len(history)+1)
	msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: b.system})
	if facts != "" {
		msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: facts})
	}
	msgs = append(msgs, b.fewshots...)
	msgs = append(msgs, history...)
	msgs = append(msgs, core.Message{Role: core.RoleUser, Content: content})

	return msgs, nil
}

// LogTokenEstimate reports the approximate prompt size at debug level.
// Best effort: an unknown encoding just skips the log line.
func LogTokenEstimate(ctx context.Context, msgs []core.Message) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return
	}
	total := 0
	for _, m := range msgs {
		total += len(enc.Encode(m.Content, nil, nil))
	}
	log.FromCtx(ctx).Debug().Int("tokens", total).Int("messages", len(msgs)).Msg("prompt assembled")
}
