package filter

import (
	"sync"
	"time"
)

const (
	rateLimitWindow      = 60 * time.Second
	maxMessagesPerWindow = 10
)

// RateLimiter tracks message timestamps per user over a sliding window.
// The current message is counted before the limit check, so the 11th
// message inside the window is the first one limited.
type RateLimiter struct {
	mu    sync.Mutex
	seen  map[string][]time.Time
	now   func() time.Time
	limit int
}

// NewRateLimiter creates a limiter with the default window and limit.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		seen:  make(map[string][]time.Time),
		now:   time.Now,
		limit: maxMessagesPerWindow,
	}
}

// IsRateLimited records one message for userID and reports whether the
// user is over the limit for the window ending now.
func (rl *RateLimiter) IsRateLimited(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rateLimitWindow)

	recent := rl.seen[userID][:0]
	for _, ts := range rl.seen[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	recent = append(recent, now)
	rl.seen[userID] = recent

	return len(recent) > rl.limit
}

// ActiveUsers reports how many users currently have tracked timestamps.
func (rl *RateLimiter) ActiveUsers() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.seen)
}
