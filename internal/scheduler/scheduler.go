package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/service"
)

// NewCron accepts six-field specs (with seconds) and descriptors such as @hourly.
func NewCron() *cron.Cron {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	return cron.New(cron.WithParser(parser))
}

// AddSnapshotJob registers the snapshot run on c.
func AddSnapshotJob(c *cron.Cron, schedule string, producerSvc service.SnapshotProducerService) (cron.EntryID, error) {
	id, err := c.AddFunc(schedule, func() {
		if err := producerSvc.ProcessSnapshots(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error during scheduled snapshot run")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}
	return id, nil
}

func NewScheduler(lc fx.Lifecycle, cfg *config.Config, producerSvc service.SnapshotProducerService) (*cron.Cron, error) {
	if !cfg.Snapshot.Enabled {
		log.Info().Msg("Snapshot job disabled")
		return nil, nil
	}

	c := NewCron()
	if _, err := AddSnapshotJob(c, cfg.Snapshot.Schedule, producerSvc); err != nil {
		log.Error().Err(err).Str("schedule", cfg.Snapshot.Schedule).Msg("Failed to add cron job")
		return nil, err
	}
	log.Info().Str("schedule", cfg.Snapshot.Schedule).Msg("Scheduled snapshot job")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c, nil
}
