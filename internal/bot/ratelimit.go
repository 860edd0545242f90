package bot

import (
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-reporter/internal/store"
)

// RateLimiter enforces a cooldown between commands from the same nick. A
// zero window disables it.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func NewRateLimiter(window time.Duration, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		window: window,
		last:   make(map[string]time.Time),
		now:    now,
	}
}

// Reserve starts nick's cooldown if it is not already running and reports
// whether the command may proceed. Checking and starting happen under one
// lock, so a burst from one nick admits a single command. The returned time
// identifies the reservation for Release.
func (r *RateLimiter) Reserve(nick string) (time.Time, bool) {
	if r.window <= 0 {
		return time.Time{}, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := store.NormalizeNick(nick)
	now := r.now()
	if last, ok := r.last[key]; ok && now.Sub(last) < r.window {
		return time.Time{}, false
	}

	for n, t := range r.last {
		if now.Sub(t) >= r.window {
			delete(r.last, n)
		}
	}
	r.last[key] = now
	return now, true
}

// Release gives back a reservation for a command that should not count,
// unless a newer one has replaced it.
func (r *RateLimiter) Release(nick string, reserved time.Time) {
	if r.window <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := store.NormalizeNick(nick)
	if last, ok := r.last[key]; ok && last.Equal(reserved) {
		delete(r.last, key)
	}
}
