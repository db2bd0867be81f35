package buckets

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/domain/search"
	"r2-dashboard/internal/utils/platformerrors"
)

const enrichConcurrency = 4

// Service lists and manages buckets.
type Service struct {
	storage      Storage
	domains      DomainProvider
	stats        *StatsCache
	statsMaxKeys int
	log          zerolog.Logger
}

func NewService(cfg *config.Config, storage Storage, domains DomainProvider, stats *StatsCache, log zerolog.Logger) *Service {
	return &Service{
		storage:      storage,
		domains:      domains,
		stats:        stats,
		statsMaxKeys: cfg.StatsMaxKeys,
		log:          log.With().Str("component", "buckets-service").Logger(),
	}
}

// List returns buckets whose name contains query (case-insensitive), enriched with
// stats and domains. Enrichment failures are logged and leave the fields empty.
func (s *Service) List(ctx context.Context, query string) ([]Bucket, error) {
	infos, err := s.storage.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]Bucket, 0, len(infos))
	for _, info := range infos {
		if query != "" && !strings.Contains(strings.ToLower(info.Name), query) {
			continue
		}
		result = append(result, Bucket{Name: info.Name, CreationDate: info.CreationDate, Domains: []string{}})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(enrichConcurrency)
	for i := range result {
		bucket := &result[i]
		group.Go(func() error {
			s.enrich(groupCtx, bucket)
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) enrich(ctx context.Context, bucket *Bucket) {
	stats, err := s.Stats(ctx, bucket.Name)
	if err != nil {
		s.log.Warn().Err(err).Str("bucket", bucket.Name).Msg("bucket stats unavailable")
	}
	bucket.ApplyStats(stats)
	bucket.SizeHuman = search.FormatBytes(float64(bucket.Size))

	if s.domains == nil {
		return
	}
	info, err := s.domains.Domains(ctx, bucket.Name)
	if err != nil {
		s.log.Warn().Err(err).Str("bucket", bucket.Name).Msg("bucket domains unavailable")
		return
	}
	applyDomains(bucket, info)
}

func applyDomains(bucket *Bucket, info *DomainInfo) {
	if info == nil {
		return
	}
	bucket.PublicAccess = info.PublicAccess
	bucket.PublicURL = info.PublicURL
	if info.Domains != nil {
		bucket.Domains = info.Domains
	}
}

// Stats returns cached stats for bucket, computing them on a miss.
func (s *Service) Stats(ctx context.Context, bucket string) (*Stats, error) {
	if s.stats != nil {
		if stats, ok := s.stats.Get(bucket); ok {
			return stats, nil
		}
	}
	return s.computeStats(ctx, bucket)
}

func (s *Service) computeStats(ctx context.Context, bucket string) (*Stats, error) {
	stats, err := s.storage.BucketStats(ctx, bucket, s.statsMaxKeys)
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.Put(bucket, *stats)
	}
	return stats, nil
}

// RefreshStats recomputes the stats of every cached bucket.
func (s *Service) RefreshStats(ctx context.Context) error {
	if s.stats == nil {
		return nil
	}
	for _, bucket := range s.stats.Buckets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.computeStats(ctx, bucket); err != nil {
			if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
				s.stats.Remove(bucket)
				continue
			}
			s.log.Warn().Err(err).Str("bucket", bucket).Msg("refresh bucket stats")
		}
	}
	return nil
}

// Create creates a bucket and optionally enables its managed public domain.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Bucket, error) {
	name := strings.TrimSpace(in.Name)
	if !ValidName(name) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"bucket name must be 3-63 characters of lowercase letters, digits, hyphens or periods", nil,
			"6a3e9b1d-07c4-4f2a-b85e-d19c4a7f3e20")
	}

	if err := s.storage.CreateBucket(ctx, name); err != nil {
		return nil, err
	}
	bucket := &Bucket{Name: name, Domains: []string{}}
	bucket.ApplyStats(&Stats{})
	bucket.SizeHuman = search.FormatBytes(0)

	if in.PublicAccess && s.domains != nil {
		info, err := s.domains.SetPublicAccess(ctx, name, true)
		if err != nil {
			s.log.Warn().Err(err).Str("bucket", name).Msg("enable public access")
		} else {
			applyDomains(bucket, info)
		}
	}

	s.log.Info().Str("bucket", name).Bool("public", bucket.PublicAccess).Msg("bucket created")
	return bucket, nil
}

// Delete removes an empty bucket.
func (s *Service) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"invalid bucket name", nil, "b4f70c2e-93d1-4a6b-8e05-2c7d1f9a6b38")
	}
	if err := s.storage.DeleteBucket(ctx, name); err != nil {
		return err
	}
	if s.stats != nil {
		s.stats.Remove(name)
	}
	s.log.Info().Str("bucket", name).Msg("bucket deleted")
	return nil
}
