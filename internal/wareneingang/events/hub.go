package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub fans events out to subscriber channels. Delivery is non-blocking:
// a subscriber whose buffer is full loses the event rather than stalling
// the ingestion path. The events are advisory UI notifications, not the
// system of record.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	now    func() time.Time
}

func NewHub(now func() time.Time) *Hub {
	if now == nil {
		now = time.Now
	}
	return &Hub{subs: make(map[int]chan Event), now: now}
}

// Subscribe registers a subscriber with the given buffer size and returns
// its channel plus an unsubscribe func. The channel is closed on
// unsubscribe.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish stamps the event (ID, At if unset) and delivers it to every
// subscriber that has buffer room.
func (h *Hub) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = h.now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
