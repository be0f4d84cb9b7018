package catalog

import (
	"sync"
	"time"
)

// RateLimiter spaces requests to the store backend evenly. The backend is
// the same process that serves the register, so the importer never gets to
// monopolize it.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	nextSlot time.Time
}

func NewRateLimiter(rps int) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(rps)}
}

// WaitTurn blocks until the caller may issue its request. Slots are handed
// out in arrival order under the lock; the sleep happens outside it.
func (r *RateLimiter) WaitTurn() {
	r.mu.Lock()
	slot := time.Now()
	if r.nextSlot.After(slot) {
		slot = r.nextSlot
	}
	r.nextSlot = slot.Add(r.interval)
	r.mu.Unlock()

	if wait := time.Until(slot); wait > 0 {
		time.Sleep(wait)
	}
}
