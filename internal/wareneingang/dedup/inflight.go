package dedup

import (
	"sync"
	"time"
)

// InFlight tracks scope keys with an ingestion attempt currently in
// progress. A key is held across the entire extent of one attempt, every
// store call included, which is what keeps two concurrent calls for the
// same scope from both reaching the write step.
type InFlight struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewInFlight() *InFlight {
	return &InFlight{held: make(map[string]time.Time)}
}

// TryAcquire takes the key if it is free. Returns false if another attempt
// holds it.
func (f *InFlight) TryAcquire(key string, at time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.held[key]; ok {
		return false
	}
	f.held[key] = at
	return true
}

func (f *InFlight) Release(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, key)
}

// Held reports whether the key is currently acquired.
func (f *InFlight) Held(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.held[key]
	return ok
}
