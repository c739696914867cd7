package dedup

import (
	"sync"
	"time"
)

// Cache is the advisory second tier of the duplicate guard: payload →
// last-seen time, bounded by the dedup window. Losing it is safe (a
// restart empties it); the store tiers remain authoritative.
type Cache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewCache(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{entries: make(map[string]time.Time), now: now}
}

// SeenWithin reports whether payload was seen within window. On a hit the
// last-seen time is refreshed: a repeat offender stays recent for as long
// as it keeps arriving.
func (c *Cache) SeenWithin(payload string, window time.Duration) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	seen, ok := c.entries[payload]
	if !ok || now.Sub(seen) > window {
		return false
	}
	c.entries[payload] = now
	return true
}

// Touch records payload as seen now.
func (c *Cache) Touch(payload string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[payload] = now
}

// Sweep drops entries older than ttl and returns how many were removed.
func (c *Cache) Sweep(ttl time.Duration) int {
	cutoff := c.now().Add(-ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for payload, seen := range c.entries {
		if seen.Before(cutoff) {
			delete(c.entries, payload)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
