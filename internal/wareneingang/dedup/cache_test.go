package dedup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/dedup"
)

func TestCache_SeenWithinWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	cache := dedup.NewCache(clock.now)

	assert.False(t, cache.SeenWithin("PKG-0001", testWindow))

	cache.Touch("PKG-0001")
	assert.True(t, cache.SeenWithin("PKG-0001", testWindow))

	clock.advance(testWindow + time.Second)
	assert.False(t, cache.SeenWithin("PKG-0001", testWindow))
}

func TestCache_HitRefreshesEntry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	cache := dedup.NewCache(clock.now)

	cache.Touch("PKG-0001")

	clock.advance(4 * time.Minute)
	require.True(t, cache.SeenWithin("PKG-0001", testWindow))

	// The hit above moved last-seen to now, so another 4 minutes still
	// falls inside the 5-minute window.
	clock.advance(4 * time.Minute)
	assert.True(t, cache.SeenWithin("PKG-0001", testWindow))
}

func TestCache_SweepEvictsExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	cache := dedup.NewCache(clock.now)

	cache.Touch("old")
	clock.advance(10 * time.Minute)
	cache.Touch("fresh")

	removed := cache.Sweep(testWindow)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.SeenWithin("fresh", testWindow))
	assert.False(t, cache.SeenWithin("old", testWindow))
}

func TestInFlight_AcquireReleaseCycle(t *testing.T) {
	locks := dedup.NewInFlight()
	at := time.Now()

	require.True(t, locks.TryAcquire("42:PKG-0001", at))
	assert.False(t, locks.TryAcquire("42:PKG-0001", at))

	// Different scope keys are independent.
	assert.True(t, locks.TryAcquire("43:PKG-0001", at))

	locks.Release("42:PKG-0001")
	assert.True(t, locks.TryAcquire("42:PKG-0001", at))
}
