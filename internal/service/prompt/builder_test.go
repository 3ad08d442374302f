package prompt

import (
	"strings"
	"testing"

	"github.com/sandevgo/daobot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fewshotsJSON = `[
	{"user": "wen moon", "assistant": "Moons are earned. Stack, build, execute."},
	{"user": "should I ape", "assistant": "Size the risk first. Then strike."}
]`

func TestBuildMessages_Order(t *testing.T) {
	b := NewBuilder(60, fewshotsJSON)

	history := []core.Message{
		{Role: core.RoleUser, Content: "h1"},
		{Role: core.RoleAssistant, Content: "h2"},
	}

	msgs, err := b.BuildMessages("what now", history, "FACTS @ t:\n- GLOBAL: x")
	require.NoError(t, err)

	// system, facts, 4 few-shot turns, 2 history, user
	require.Len(t, msgs, 9)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "DAOman")
	assert.Contains(t, msgs[0].Content, "RULES:")

	assert.Equal(t, core.RoleSystem, msgs[1].Role)
	assert.Equal(t, "FACTS @ t:\n- GLOBAL: x", msgs[1].Content)

	assert.Equal(t, core.RoleUser, msgs[2].Role)
	assert.Equal(t, "wen moon", msgs[2].Content)
	assert.Equal(t, core.RoleAssistant, msgs[3].Role)
	assert.Equal(t, core.RoleUser, msgs[4].Role)
	assert.Equal(t, core.RoleAssistant, msgs[5].Role)

	assert.Equal(t, "h1", msgs[6].Content)
	assert.Equal(t, "h2", msgs[7].Content)

	last := msgs[len(msgs)-1]
	assert.Equal(t, core.RoleUser, last.Role)
	assert.Equal(t, "what now", last.Content)
}

func TestBuildMessages_NoFactsMeansNoFactsTurn(t *testing.T) {
	b := NewBuilder(60, "[]")
	msgs, err := b.BuildMessages("hello", nil, "")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, core.RoleUser, msgs[1].Role)
}

func TestBuildMessages_EmptyQueryFails(t *testing.T) {
	b := NewBuilder(60, "[]")
	_, err := b.BuildMessages("   ", nil, "")
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestBuildMessages_HistoryTruncatedToLastSix(t *testing.T) {
	b := NewBuilder(60, "[]")

	var history []core.Message
	for i := 0; i < 10; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		history = append(history, core.Message{Role: role, Content: string(rune('a' + i))})
	}

	msgs, err := b.BuildMessages("q", history, "")
	require.NoError(t, err)

	// system + 6 history + user
	require.Len(t, msgs, 8)
	assert.Equal(t, "e", msgs[1].Content) // oldest surviving turn
	assert.Equal(t, "j", msgs[6].Content) // newest history turn
}

func TestBuildMessages_QueryTruncated(t *testing.T) {
	b := NewBuilder(60, "[]")
	long := strings.Repeat("x", MaxQueryLen+500)

	msgs, err := b.BuildMessages(long, nil, "")
	require.NoError(t, err)

	last := msgs[len(msgs)-1]
	assert.Len(t, last.Content, MaxQueryLen)
}

func TestBuildMessages_MalformedFewshotsIgnored(t *testing.T) {
	b := NewBuilder(60, "{not json")
	msgs, err := b.BuildMessages("q", nil, "")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}
