package buckets

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// StatsCache keeps recent bucket stats in a bounded LRU. Entries older than the TTL
// are reported as missing.
type StatsCache struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewStatsCache creates a cache holding at most size buckets.
func NewStatsCache(size int, ttl time.Duration) (*StatsCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &StatsCache{cache: cache, ttl: ttl, now: time.Now}, nil
}

// Get returns fresh stats for bucket.
func (c *StatsCache) Get(bucket string) (*Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.cache.Get(bucket)
	if !ok {
		return nil, false
	}
	stats := value.(Stats)
	if c.ttl > 0 && c.now().Sub(stats.ComputedAt) >= c.ttl {
		return nil, false
	}
	return &stats, true
}

// Put stores stats for bucket.
func (c *StatsCache) Put(bucket string, stats Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(bucket, stats)
}

// Remove drops bucket from the cache.
func (c *StatsCache) Remove(bucket string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(bucket)
}

// Buckets returns the cached bucket names, oldest first.
func (c *StatsCache) Buckets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.cache.Keys()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, key.(string))
	}
	return names
}
