package voice

import (
	"sync"
	"time"
)

// Cooldown drops messages from the same user arriving too close
// together. A courtesy anti-flood measure, not a correctness mechanism:
// rejected messages are discarded, not queued.
type Cooldown struct {
	mu       sync.Mutex
	lastSeen map[int64]time.Time
	window   time.Duration
	now      func() time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		lastSeen: make(map[int64]time.Time),
		window:   window,
		now:      time.Now,
	}
}

// Allow records the message and reports whether it should be handled.
func (c *Cooldown) Allow(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if prev, ok := c.lastSeen[userID]; ok && now.Sub(prev) < c.window {
		return false
	}
	c.lastSeen[userID] = now
	return true
}
