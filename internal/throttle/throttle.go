// Package throttle decides when the bot may surface the consult offer.
package throttle

import (
	"sync"
	"time"
)

// maxLogEntries bounds the per-user log so a chatty user cannot grow memory
// without limit. It is a safety valve, not part of the windowing contract.
const maxLogEntries = 50

// Limiter counts question interactions per user inside a sliding window and
// fires once the threshold is met, then suppresses further offers for the
// cooldown period. During cooldown new interactions are still appended to the
// log so the window stays warm, but they can never trigger an offer.
type Limiter struct {
	mu            sync.Mutex
	window        time.Duration
	cooldown      time.Duration
	threshold     int
	logs          map[int64][]time.Time
	cooldownUntil map[int64]time.Time
}

func NewLimiter(window, cooldown time.Duration, threshold int) *Limiter {
	if window <= 0 {
		window = 30 * time.Minute
	}
	if cooldown <= 0 {
		cooldown = 6 * time.Hour
	}
	if threshold <= 0 {
		threshold = 5
	}
	return &Limiter{
		window:        window,
		cooldown:      cooldown,
		threshold:     threshold,
		logs:          make(map[int64][]time.Time),
		cooldownUntil: make(map[int64]time.Time),
	}
}

// Record registers one question interaction at now and reports whether the
// offer should be shown. When it returns true the user's log is cleared and
// the cooldown is armed, so the next window starts counting from zero.
func (l *Limiter) Record(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Before(l.cooldownUntil[userID]) {
		l.logs[userID] = appendBounded(l.logs[userID], now)
		return false
	}

	entries := appendBounded(l.logs[userID], now)
	cutoff := now.Add(-l.window)
	for len(entries) > 0 && entries[0].Before(cutoff) {
		entries = entries[1:]
	}
	if len(entries) >= l.threshold {
		l.cooldownUntil[userID] = now.Add(l.cooldown)
		delete(l.logs, userID)
		return true
	}
	l.logs[userID] = entries
	return false
}

// PendingCount reports how many logged interactions the user currently has.
// Entries older than the window may still be counted until the next Record
// call trims them.
func (l *Limiter) PendingCount(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.logs[userID])
}

// TrackedUsers reports how many users have throttle state.
func (l *Limiter) TrackedUsers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	users := make(map[int64]struct{}, len(l.logs)+len(l.cooldownUntil))
	for id := range l.logs {
		users[id] = struct{}{}
	}
	for id := range l.cooldownUntil {
		users[id] = struct{}{}
	}
	return len(users)
}

func appendBounded(entries []time.Time, now time.Time) []time.Time {
	entries = append(entries, now)
	if len(entries) > maxLogEntries {
		entries = entries[len(entries)-maxLogEntries:]
	}
	return entries
}
