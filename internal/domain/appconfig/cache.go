package appconfig

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TTLCache holds a single value for at most ttl. A zero ttl disables caching.
type TTLCache[V any] struct {
	mu       sync.RWMutex
	clock    Clock
	ttl      time.Duration
	value    V
	loadedAt time.Time
	valid    bool
}

func NewTTLCache[V any](ttl time.Duration, clock Clock) *TTLCache[V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TTLCache[V]{ttl: ttl, clock: clock}
}

// Get returns the cached value while it is younger than the TTL.
func (c *TTLCache[V]) Get() (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	if !c.valid || c.ttl <= 0 {
		return zero, false
	}
	if c.clock.Now().Sub(c.loadedAt) >= c.ttl {
		return zero, false
	}
	return c.value, true
}

// Set stores value and restarts the TTL.
func (c *TTLCache[V]) Set(value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.loadedAt = c.clock.Now()
	c.valid = true
}

// Invalidate drops the cached value.
func (c *TTLCache[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	c.value = zero
	c.valid = false
}
