package prompt

import (
	"encoding/json"

	"github.com/sandevgo/daobot/internal/core"
)

type fewshot struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ParseFewshots turns the configured JSON array of example exchanges
// into alternating user/assistant turns. Malformed input yields no
// few-shots rather than an error; priming is optional.
func ParseFewshots(raw string) []core.Message {
	var pairs []fewshot
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil
	}

	var msgs []core.Message
	for _, p := range pairs {
		if p.User == "" || p.Assistant == "" {
			continue
		}
		msgs = append(msgs,
			core.Message{Role: core.RoleUser, Content: p.User},
			core.Message{Role: core.RoleAssistant, Content: p.Assistant},
		)
	}
	return msgs
}
