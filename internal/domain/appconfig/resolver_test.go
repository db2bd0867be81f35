package appconfig

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2-dashboard/internal/utils/crypto"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memRepo struct {
	mu      sync.Mutex
	entries map[string]Entry
	reads   int
}

func newMemRepo() *memRepo { return &memRepo{entries: map[string]Entry{}} }

func (r *memRepo) List(context.Context) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out, nil
}

func (r *memRepo) Upsert(_ context.Context, entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.Key] = e
	}
	return nil
}

func newResolver(t *testing.T, repo Repository, clock Clock, fallback map[string]string) *Resolver {
	t.Helper()
	sealer, err := crypto.NewSealer("resolver-test-key")
	require.NoError(t, err)
	cache := NewTTLCache[map[string]string](5*time.Minute, clock)
	return NewResolver(repo, sealer, fallback, cache, zerolog.Nop())
}

func TestResolverServesStaleValuesUntilTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := newMemRepo()
	resolver := newResolver(t, repo, clock, nil)
	ctx := context.Background()

	require.NoError(t, resolver.Save(ctx, []Entry{{Key: KeyAccessKeyID, Value: "old"}}))
	creds, err := resolver.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", creds.AccessKeyID)

	require.NoError(t, resolver.Save(ctx, []Entry{{Key: KeyAccessKeyID, Value: "rotated"}}))

	clock.Advance(4*time.Minute + 59*time.Second)
	creds, err = resolver.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", creds.AccessKeyID, "rotation is not visible inside the TTL")
	assert.Equal(t, 1, repo.reads)

	clock.Advance(time.Second)
	creds, err = resolver.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated", creds.AccessKeyID)
	assert.Equal(t, 2, repo.reads)
}

func TestResolverInvalidate(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	repo := newMemRepo()
	resolver := newResolver(t, repo, clock, nil)
	ctx := context.Background()

	done, err := resolver.SetupCompleted(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, resolver.Save(ctx, []Entry{{Key: KeySetupCompleted, Value: "true"}}))
	resolver.Invalidate()

	done, err = resolver.SetupCompleted(ctx)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestResolverEncryptsSecretsAndFallsBackToEnv(t *testing.T) {
	repo := newMemRepo()
	resolver := newResolver(t, repo, SystemClock{}, map[string]string{
		KeyAccountID: "env-account",
		KeyEndpoint:  "https://env.example.com",
	})
	ctx := context.Background()

	require.NoError(t, resolver.Save(ctx, Credentials{
		AccountID: "db-account", AccessKeyID: "key", SecretAccessKey: "s3cr3t",
	}.Entries()))

	stored := repo.entries[KeySecretAccessKey]
	assert.True(t, stored.IsSecret)
	assert.NotEqual(t, "s3cr3t", stored.Value)

	creds, err := resolver.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "db-account", creds.AccountID)
	assert.Equal(t, "s3cr3t", creds.SecretAccessKey)
	assert.Equal(t, "https://env.example.com", creds.Endpoint)
}

func TestResolveReturnsCopies(t *testing.T) {
	resolver := newResolver(t, newMemRepo(), SystemClock{}, map[string]string{KeyAccountID: "a"})
	ctx := context.Background()

	values, err := resolver.Resolve(ctx)
	require.NoError(t, err)
	values[KeyAccountID] = "mutated"

	values, err = resolver.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", values[KeyAccountID])
}

func TestTTLCacheZeroTTLDisablesCaching(t *testing.T) {
	cache := NewTTLCache[int](0, nil)
	cache.Set(1)
	_, ok := cache.Get()
	assert.False(t, ok)
}

func TestCredentials(t *testing.T) {
	creds := Credentials{AccountID: "abc", AccessKeyID: "k", SecretAccessKey: "s"}
	assert.True(t, creds.Complete())
	assert.Equal(t, "https://abc.r2.cloudflarestorage.com", creds.S3Endpoint())

	rotated := creds
	rotated.SecretAccessKey = "s2"
	assert.NotEqual(t, creds.Fingerprint(), rotated.Fingerprint())
	assert.Len(t, creds.Entries(), 3)

	assert.False(t, Credentials{AccessKeyID: "k", SecretAccessKey: "s"}.Complete())
}
