package appconfig

import (
	"context"
	"maps"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"r2-dashboard/internal/utils/platformerrors"
)

// Sealer encrypts secret values at rest.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

// Resolver reads configuration from the database, falling back to environment
// values for missing keys. Results are shared through a TTL cache; writes do not
// refresh it until Invalidate is called.
type Resolver struct {
	repo     Repository
	sealer   Sealer
	fallback map[string]string
	cache    *TTLCache[map[string]string]
	group    singleflight.Group
	log      zerolog.Logger
}

func NewResolver(repo Repository, sealer Sealer, fallback map[string]string, cache *TTLCache[map[string]string], log zerolog.Logger) *Resolver {
	return &Resolver{
		repo:     repo,
		sealer:   sealer,
		fallback: maps.Clone(fallback),
		cache:    cache,
		log:      log.With().Str("component", "config-resolver").Logger(),
	}
}

// Resolve returns a copy of the current configuration values.
func (r *Resolver) Resolve(ctx context.Context) (map[string]string, error) {
	if values, ok := r.cache.Get(); ok {
		return maps.Clone(values), nil
	}

	result, err, _ := r.group.Do("resolve", func() (any, error) {
		values, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Set(values)
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(result.(map[string]string)), nil
}

func (r *Resolver) load(ctx context.Context) (map[string]string, error) {
	entries, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(entries)+len(r.fallback))
	for _, entry := range entries {
		value := entry.Value
		if entry.IsSecret && r.sealer != nil {
			value, err = r.sealer.Open(entry.Value)
			if err != nil {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
					"failed to decrypt configuration value "+entry.Key, err, "8c2f5a9e-41d7-4b30-a6e8-f3b19d07c254")
			}
		}
		values[entry.Key] = value
	}
	for key, value := range r.fallback {
		if strings.TrimSpace(values[key]) == "" && value != "" {
			values[key] = value
		}
	}
	r.log.Debug().Int("entries", len(entries)).Msg("configuration loaded")
	return values, nil
}

// Credentials resolves the storage provider credentials.
func (r *Resolver) Credentials(ctx context.Context) (Credentials, error) {
	values, err := r.Resolve(ctx)
	if err != nil {
		return Credentials{}, err
	}
	return CredentialsFrom(values), nil
}

// SetupCompleted reports whether first-run setup has finished.
func (r *Resolver) SetupCompleted(ctx context.Context) (bool, error) {
	values, err := r.Resolve(ctx)
	if err != nil {
		return false, err
	}
	return values[KeySetupCompleted] == "true", nil
}

// Save encrypts secret entries and upserts them. The cache is left untouched.
func (r *Resolver) Save(ctx context.Context, entries []Entry) error {
	sealed := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsSecret && r.sealer != nil {
			value, err := r.sealer.Seal(entry.Value)
			if err != nil {
				return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
					"failed to encrypt configuration value "+entry.Key, err, "2e6b0d4f-8a15-4c97-b3d2-75f1c9e08a46")
			}
			entry.Value = value
		}
		sealed = append(sealed, entry)
	}
	return r.repo.Upsert(ctx, sealed)
}

// Invalidate forces the next Resolve to read the database.
func (r *Resolver) Invalidate() {
	r.cache.Invalidate()
}
