package pipeline

import (
	"sync"
	"time"
)

// CooldownRegistry tracks, per class label, when an alert was last spoken.
// It is the one piece of state shared across concurrent requests, so every
// access goes through the mutex: two requests racing on the same label must
// not both win the announce check.
type CooldownRegistry struct {
	mu            sync.Mutex
	lastAnnounced map[string]time.Time
}

// NewCooldownRegistry returns an empty registry; every class starts silent.
func NewCooldownRegistry() *CooldownRegistry {
	return &CooldownRegistry{lastAnnounced: make(map[string]time.Time)}
}

// ShouldAnnounce reports whether label may be spoken at now, and if so
// records now as its last announcement. A label that has never announced,
// or whose cooldown has fully elapsed, is permitted. The check and the
// record are a single atomic step.
func (r *CooldownRegistry) ShouldAnnounce(label string, now time.Time, cooldown time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, seen := r.lastAnnounced[label]
	if seen && now.Sub(last) < cooldown {
		return false
	}
	r.lastAnnounced[label] = now
	return true
}

// Reset clears all per-class state back to silent.
func (r *CooldownRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastAnnounced = make(map[string]time.Time)
}

// Len returns the number of labels currently tracked.
func (r *CooldownRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lastAnnounced)
}
