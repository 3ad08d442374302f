package voice

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutThenGet(t *testing.T) {
	s := NewStore()
	s.Put(7, []byte("ogg-bytes"), "voice.ogg")

	ref := s.Get(7)
	require.NotNil(t, ref)
	assert.Equal(t, int64(7), ref.OwnerID)
	assert.Equal(t, []byte("ogg-bytes"), ref.Audio)
	assert.Equal(t, "voice.ogg", ref.Filename)
}

func TestStore_UnknownUser(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Get(99))
}

func TestStore_EmptyAudioTreatedAsAbsent(t *testing.T) {
	s := NewStore()
	s.Put(7, nil, "voice.ogg")
	assert.Nil(t, s.Get(7))
}

func TestStore_ExpiresAfterMaxAge(t *testing.T) {
	current := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return current }))

	s.Put(7, []byte("a"), "voice.ogg")
	require.NotNil(t, s.Get(7))

	current = current.Add(DefaultMaxAge - time.Second)
	require.NotNil(t, s.Get(7), "still fresh just inside the window")

	current = current.Add(2 * time.Second)
	assert.Nil(t, s.Get(7), "expired past the window")
}

func TestStore_PutOverwritesAndRefreshes(t *testing.T) {
	current := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return current }))

	s.Put(7, []byte("old"), "old.ogg")
	current = current.Add(29 * time.Minute)
	s.Put(7, []byte("new"), "new.ogg")
	current = current.Add(5 * time.Minute)

	ref := s.Get(7)
	require.NotNil(t, ref, "second capture restarted the clock")
	assert.Equal(t, []byte("new"), ref.Audio)
	assert.Equal(t, "new.ogg", ref.Filename)
}

func TestStore_UsersAreIsolated(t *testing.T) {
	s := NewStore()
	s.Put(1, []byte("one"), "1.ogg")
	s.Put(2, []byte("two"), "2.ogg")

	assert.Equal(t, []byte("one"), s.Get(1).Audio)
	assert.Equal(t, []byte("two"), s.Get(2).Audio)
}

func TestStore_ConcurrentPutGet(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Put(7, []byte("x"), "v.ogg")
		}()
		go func() {
			defer wg.Done()
			_ = s.Get(7)
		}()
	}
	wg.Wait()

	require.NotNil(t, s.Get(7))
}

func TestCooldown_Window(t *testing.T) {
	current := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(500 * time.Millisecond)
	c.now = func() time.Time { return current }

	assert.True(t, c.Allow(7), "first message passes")
	current = current.Add(100 * time.Millisecond)
	assert.False(t, c.Allow(7), "too soon, dropped")
	current = current.Add(500 * time.Millisecond)
	assert.True(t, c.Allow(7), "window elapsed")
}

func TestCooldown_UsersIndependent(t *testing.T) {
	c := NewCooldown(500 * time.Millisecond)
	assert.True(t, c.Allow(1))
	assert.True(t, c.Allow(2))
}
