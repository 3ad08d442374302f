package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/internal/service/facts"
	"github.com/sandevgo/daobot/internal/service/prompt"
	"github.com/sandevgo/daobot/internal/service/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	answer string
	err    error
	seen   [][]core.Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []core.Message) (string, error) {
	f.seen = append(f.seen, msgs)
	return f.answer, f.err
}

type fakeSearcher struct {
	results []core.SearchResult
}

func (f *fakeSearcher) Search(context.Context, string) ([]core.SearchResult, error) {
	return f.results, nil
}

type fakePricer struct{}

func (fakePricer) ResolveAssetID(_ context.Context, q string) (string, error) {
	if q == "btc" || q == "bitcoin" {
		return "btc-bitcoin", nil
	}
	return "", core.ErrNotFound
}

func (fakePricer) Quote(context.Context, string) (core.CoinQuote, error) {
	return core.CoinQuote{Price: 64250.50, Change24Pct: 2.41}, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

type fakeSynthesizer struct {
	spoke  []string
	cloned []string
	err    error
}

func (f *fakeSynthesizer) Speak(_ context.Context, text string) ([]byte, error) {
	f.spoke = append(f.spoke, text)
	return []byte("tts"), f.err
}

func (f *fakeSynthesizer) Clone(_ context.Context, text string, _ core.VoiceReference) ([]byte, error) {
	f.cloned = append(f.cloned, text)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("cloned"), nil
}

type memRepo struct {
	msgs map[string][]core.Message
}

func newMemRepo() *memRepo {
	return &memRepo{msgs: make(map[string][]core.Message)}
}

func (m *memRepo) AddMessage(_ context.Context, sessionID string, msg core.Message) error {
	m.msgs[sessionID] = append(m.msgs[sessionID], msg)
	return nil
}

func (m *memRepo) GetMessages(_ context.Context, sessionID string, limit int) ([]core.Message, error) {
	msgs := m.msgs[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func newTestRelay(completer *fakeCompleter, searcher core.Searcher, synth core.Synthesizer, voices *voice.Store) (*Relay, *memRepo) {
	assembler := facts.NewAssembler(searcher, fakePricer{}, nil, nil, nil)
	builder := prompt.NewBuilder(60, "[]")
	repo := newMemRepo()
	r := NewRelay(assembler, builder, completer, &fakeTranscriber{text: "hello"}, synth, voices, repo, 6)
	return r, repo
}

func TestAsk_GroundedQuery(t *testing.T) {
	completer := &fakeCompleter{answer: "BTC is at $64,250.50, up 2.41% today."}
	searcher := &fakeSearcher{results: []core.SearchResult{
		{Title: "Final score", Snippet: "Lakers beat Celtics 112-104", URL: "https://example.com/score", Source: "serper"},
	}}
	r, repo := newTestRelay(completer, searcher, &fakeSynthesizer{}, voice.NewStore())

	answer, err := r.Ask(context.Background(), "chat-1", "btc price and who won the game today")
	require.NoError(t, err)
	assert.Equal(t, completer.answer, answer)

	require.Len(t, completer.seen, 1)
	msgs := completer.seen[0]

	// Persona turn first, facts turn immediately after.
	require.GreaterOrEqual(t, len(msgs), 3)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, core.BotName)
	assert.Equal(t, core.RoleSystem, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "FACTS @")
	assert.Contains(t, msgs[1].Content, "WEB RESULTS")
	assert.Contains(t, msgs[1].Content, "Lakers beat Celtics")
	assert.Contains(t, msgs[1].Content, "COIN BTC")

	// Final turn is the user query.
	last := msgs[len(msgs)-1]
	assert.Equal(t, core.RoleUser, last.Role)
	assert.Equal(t, "btc price and who won the game today", last.Content)

	// Both sides of the exchange persisted.
	saved := repo.msgs["chat-1"]
	require.Len(t, saved, 2)
	assert.Equal(t, core.RoleUser, saved[0].Role)
	assert.Equal(t, core.RoleAssistant, saved[1].Role)
	assert.Equal(t, completer.answer, saved[1].Content)
}

func TestAsk_UngroundedQueryHasNoFactsTurn(t *testing.T) {
	completer := &fakeCompleter{answer: "4"}
	r, _ := newTestRelay(completer, &fakeSearcher{}, &fakeSynthesizer{}, voice.NewStore())

	_, err := r.Ask(context.Background(), "chat-1", "what is 2+2")
	require.NoError(t, err)

	require.Len(t, completer.seen, 1)
	msgs := completer.seen[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, core.RoleUser, msgs[1].Role)
}

func TestAsk_CompletionFailureLeavesHistoryClean(t *testing.T) {
	completer := &fakeCompleter{err: core.ErrRateLimited}
	r, repo := newTestRelay(completer, &fakeSearcher{}, &fakeSynthesizer{}, voice.NewStore())

	_, err := r.Ask(context.Background(), "chat-1", "what is 2+2")
	require.ErrorIs(t, err, core.ErrRateLimited)
	assert.Empty(t, repo.msgs["chat-1"], "failed turns must not be persisted")
}

func TestAsk_HistoryCarriedIntoPrompt(t *testing.T) {
	completer := &fakeCompleter{answer: "ok"}
	r, _ := newTestRelay(completer, &fakeSearcher{}, &fakeSynthesizer{}, voice.NewStore())
	ctx := context.Background()

	_, err := r.Ask(ctx, "chat-1", "what is 2+2")
	require.NoError(t, err)
	_, err = r.Ask(ctx, "chat-1", "what about 3+3")
	require.NoError(t, err)

	msgs := completer.seen[1]
	require.Len(t, msgs, 4)
	assert.Equal(t, "what is 2+2", msgs[1].Content)
	assert.Equal(t, "ok", msgs[2].Content)
	assert.Equal(t, "what about 3+3", msgs[3].Content)
}

func TestAskVoice(t *testing.T) {
	completer := &fakeCompleter{answer: "hey there"}
	r, _ := newTestRelay(completer, &fakeSearcher{}, &fakeSynthesizer{}, voice.NewStore())

	transcript, answer, err := r.AskVoice(context.Background(), "chat-1", []byte("ogg"), "voice.ogg")
	require.NoError(t, err)
	assert.Equal(t, "hello", transcript)
	assert.Equal(t, "hey there", answer)
}

func TestAskVoice_TranscriptionFailure(t *testing.T) {
	completer := &fakeCompleter{answer: "unused"}
	assembler := facts.NewAssembler(nil, fakePricer{}, nil, nil, nil)
	repo := newMemRepo()
	r := NewRelay(assembler, prompt.NewBuilder(60, "[]"), completer,
		&fakeTranscriber{err: errors.New("api down")}, &fakeSynthesizer{}, voice.NewStore(), repo, 6)

	_, _, err := r.AskVoice(context.Background(), "chat-1", []byte("ogg"), "voice.ogg")
	require.Error(t, err)
	assert.Empty(t, completer.seen)
	assert.Empty(t, repo.msgs["chat-1"])
}

func TestSpeak_DefaultVoice(t *testing.T) {
	synth := &fakeSynthesizer{}
	r, _ := newTestRelay(&fakeCompleter{}, &fakeSearcher{}, synth, voice.NewStore())

	audio, err := r.Speak(context.Background(), 42, "gm check https://example.com/chart out")
	require.NoError(t, err)
	assert.Equal(t, []byte("tts"), audio)
	require.Len(t, synth.spoke, 1)
	assert.NotContains(t, synth.spoke[0], "https://", "URLs must not be read aloud")
	assert.Empty(t, synth.cloned)
}

func TestSpeak_ClonesWithFreshReference(t *testing.T) {
	synth := &fakeSynthesizer{}
	voices := voice.NewStore()
	r, _ := newTestRelay(&fakeCompleter{}, &fakeSearcher{}, synth, voices)

	r.CaptureVoice(42, []byte("sample"), "sample.ogg")

	audio, err := r.Speak(context.Background(), 42, "gm")
	require.NoError(t, err)
	assert.Equal(t, []byte("cloned"), audio)
	assert.Empty(t, synth.spoke)
}

func TestSpeak_ExpiredReferenceFallsBack(t *testing.T) {
	synth := &fakeSynthesizer{}
	now := time.Now()
	clock := func() time.Time { return now }
	voices := voice.NewStore(voice.WithClock(func() time.Time { return clock() }))
	r, _ := newTestRelay(&fakeCompleter{}, &fakeSearcher{}, synth, voices)

	r.CaptureVoice(42, []byte("sample"), "sample.ogg")
	now = now.Add(voice.DefaultMaxAge + time.Second)

	audio, err := r.Speak(context.Background(), 42, "gm")
	require.NoError(t, err)
	assert.Equal(t, []byte("tts"), audio)
	assert.Empty(t, synth.cloned)
}

func TestSpeak_CloneFailureFallsBackToDefault(t *testing.T) {
	synth := &fakeSynthesizer{err: errors.New("sts down")}
	voices := voice.NewStore()
	r, _ := newTestRelay(&fakeCompleter{}, &fakeSearcher{}, synth, voices)

	r.CaptureVoice(42, []byte("sample"), "sample.ogg")

	_, err := r.Speak(context.Background(), 42, "gm")
	require.Error(t, err)
	require.Len(t, synth.cloned, 1)
	require.Len(t, synth.spoke, 1, "default voice attempted after clone failure")
}

func TestSpeak_NothingLeftToSay(t *testing.T) {
	synth := &fakeSynthesizer{}
	r, _ := newTestRelay(&fakeCompleter{}, &fakeSearcher{}, synth, voice.NewStore())

	_, err := r.Speak(context.Background(), 42, "https://example.com/only-a-link")
	assert.ErrorIs(t, err, core.ErrEmptyResponse)
	assert.Empty(t, synth.spoke)
}
