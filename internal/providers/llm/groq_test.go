package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroq(t *testing.T, handler http.HandlerFunc) *Groq {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := NewGroq(&config.GroqConfig{APIKey: "k", Model: "test-model", Temperature: 0.7, MaxTokens: 100})
	g.baseURL = server.URL

	// fast backoff so retry tests don't sleep for real
	cfg := retry.NewDefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.Retryable = core.Transient
	g.retrier = retry.NewRetrier(cfg)
	return g
}

func completionBody(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return b
}

func TestComplete_Success(t *testing.T) {
	g := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test-model", payload["model"])

		w.Write(completionBody("  the answer  "))
	})

	got, err := g.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "the answer", got)
}

func TestComplete_RetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	g := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		w.Write(completionBody("third time lucky"))
	})

	got, err := g.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", got)
	assert.Equal(t, 3, attempts)
}

func TestComplete_AuthErrorFailsImmediately(t *testing.T) {
	attempts := 0
	g := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})

	_, err := g.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "auth failures must not be retried")

	var se *core.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Contains(t, se.Detail, "invalid api key")
}

func TestComplete_RateLimitExhaustionSurfacesStatus(t *testing.T) {
	g := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := g.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRateLimited)
}

func TestComplete_EmptyAnswerIsDistinctError(t *testing.T) {
	g := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody("   "))
	})

	_, err := g.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "q"}})
	assert.ErrorIs(t, err, core.ErrEmptyResponse)
}

func TestComplete_ServerErrorsRetried(t *testing.T) {
	attempts := 0
	g := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := g.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "q"}})
	require.Error(t, err)
	assert.Equal(t, 3, attempts, "initial try plus two retries")
}
