package buckets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCacheExpiresEntries(t *testing.T) {
	cache, err := NewStatsCache(2, time.Minute)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Put("a", Stats{Size: 1, ComputedAt: now})
	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Size)

	now = now.Add(time.Minute)
	_, ok = cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, cache.Buckets())
}

func TestStatsCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewStatsCache(2, 0)
	require.NoError(t, err)

	cache.Put("a", Stats{})
	cache.Put("b", Stats{})
	_, _ = cache.Get("a")
	cache.Put("c", Stats{})

	assert.ElementsMatch(t, []string{"a", "c"}, cache.Buckets())
}

func TestEstimateMonthlyCost(t *testing.T) {
	assert.Equal(t, "0.00", EstimateMonthlyCost(0, 0, 0).StringFixed(2))
	assert.Equal(t, "0.15", EstimateMonthlyCost(10<<30, 0, 0).StringFixed(2))
	assert.Equal(t, "4.50", EstimateMonthlyCost(0, 1_000_000, 0).StringFixed(2))
	assert.Equal(t, "0.36", EstimateMonthlyCost(0, 0, 1_000_000).StringFixed(2))
	assert.Equal(t, "0.00", EstimateMonthlyCost(-5, -1, -1).StringFixed(2))
}
