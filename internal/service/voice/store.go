// Package voice holds the two pieces of mutable per-user state: the
// most recent voice sample used to seed speech-to-speech synthesis, and
// the anti-flood cooldown timestamps. Both are plain maps behind a
// mutex; entries expire lazily on read and are never deleted.
package voice

import (
	"sync"
	"time"

	"github.com/sandevgo/daobot/internal/core"
)

// DefaultMaxAge is how long a captured voice sample stays usable.
const DefaultMaxAge = 30 * time.Minute

type Store struct {
	mu     sync.Mutex
	refs   map[int64]core.VoiceReference
	maxAge time.Duration
	now    func() time.Time
}

type StoreOption func(*Store)

func WithMaxAge(d time.Duration) StoreOption {
	return func(s *Store) { s.maxAge = d }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		refs:   make(map[int64]core.VoiceReference),
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put unconditionally overwrites the user's reference with a fresh
// capture timestamp. One reference per user, ever.
func (s *Store) Put(userID int64, audio []byte, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[userID] = core.VoiceReference{
		OwnerID:    userID,
		Audio:      audio,
		Filename:   filename,
		CapturedAt: s.now(),
	}
}

// Get returns the stored reference, or nil when none was captured, the
// audio is empty, or the capture is older than the max age. Stale
// entries are left in place; a later Put supersedes them.
func (s *Store) Get(userID int64) *core.VoiceReference {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.refs[userID]
	if !ok || len(ref.Audio) == 0 {
		return nil
	}
	if s.now().Sub(ref.CapturedAt) > s.maxAge {
		return nil
	}
	return &ref
}
