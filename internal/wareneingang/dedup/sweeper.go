package dedup

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically evicts expired cache entries. It runs as a
// background goroutine and is safe to stop via its context or Stop.
type Sweeper struct {
	cache    *Cache
	ttl      time.Duration
	interval time.Duration
	logger   *log.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper but does not start it. Call Start to begin
// the background loop. Entries older than ttl are evicted each interval.
func NewSweeper(cache *Cache, ttl, interval time.Duration, logger *log.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		cache:    cache,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background loop: an immediate sweep, then one per
// interval, until ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	if s.ttl <= 0 {
		s.logger.Printf("cache sweeper disabled (ttl=0)")
		close(s.done)
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)

	s.logger.Printf("cache sweeper started (ttl=%s, interval=%s)", s.ttl, s.interval)
}

// Stop signals the sweeper to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	if removed := s.cache.Sweep(s.ttl); removed > 0 {
		s.logger.Printf("cache sweep: evicted %d entries older than %s", removed, s.ttl)
	}
}
