package crontab

import (
	"context"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/infrastructure/metrics"
	"r2-dashboard/internal/utils/platformerrors"
)

// StatsJobTimeout bounds a single stats refresh run.
const StatsJobTimeout = 10 * time.Minute

// StatsRefresher recomputes cached bucket statistics.
type StatsRefresher interface {
	RefreshStats(ctx context.Context) error
}

type Crontab struct {
	ctab     *crontab.Crontab
	schedule string
	stats    StatsRefresher
	log      zerolog.Logger
}

func NewCrontab(cfg *config.Config, stats StatsRefresher, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		schedule: cfg.StatsRefreshSchedule,
		stats:    stats,
		log:      log.With().Str("component", "crontab").Logger(),
	}
}

// Run schedules the background jobs and blocks until ctx is done.
// An empty schedule disables the stats refresh.
func (c *Crontab) Run(ctx context.Context) error {
	if c.schedule != "" {
		if err := c.ctab.AddJob(c.schedule, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), StatsJobTimeout)
			defer cancel()
			c.refreshStats(jobCtx)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add stats refresh job")
		}
		c.log.Info().Str("schedule", c.schedule).Msg("bucket stats refresh scheduled")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) refreshStats(ctx context.Context) {
	start := time.Now()
	if err := c.stats.RefreshStats(ctx); err != nil {
		metrics.RecordStatsRefresh("error")
		c.log.Error().Err(err).Msg("bucket stats refresh failed")
		return
	}
	metrics.RecordStatsRefresh("success")
	c.log.Debug().Dur("duration", time.Since(start)).Msg("bucket stats refreshed")
}
