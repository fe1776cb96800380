package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/dto"
	"comms-metrics-backend/internal/kafka"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/observability"
	"comms-metrics-backend/internal/query"
	"comms-metrics-backend/internal/session"
)

type SnapshotProducerService interface {
	ProcessSnapshots(ctx context.Context) error
}

type snapshotProducerService struct {
	cfg         *config.SnapshotConfig
	builder     *query.Builder
	metricsSvc  CommsMetricsService
	sessions    session.Store
	producer    kafka.SnapshotProducer
	processLock sync.Mutex
}

func NewSnapshotProducerService(
	cfg *config.Config,
	builder *query.Builder,
	metricsSvc CommsMetricsService,
	sessions session.Store,
	producer kafka.SnapshotProducer,
) SnapshotProducerService {
	return &snapshotProducerService{
		cfg:        &cfg.Snapshot,
		builder:    builder,
		metricsSvc: metricsSvc,
		sessions:   sessions,
		producer:   producer,
	}
}

// ProcessSnapshots captures today's provider metrics for every configured
// scope and publishes them. Overlapping runs are skipped.
func (s *snapshotProducerService) ProcessSnapshots(ctx context.Context) error {
	if !s.processLock.TryLock() {
		log.Warn().Msg("Snapshot run already in progress, skipping run.")
		return nil
	}
	defer s.processLock.Unlock()

	if len(s.cfg.Scopes) == 0 {
		log.Debug().Msg("No snapshot scopes configured")
		return nil
	}

	sess, err := s.sessions.Load()
	if err != nil {
		log.Error().Err(err).Str("file", s.sessions.Path()).Msg("Failed to load service session")
		return fmt.Errorf("failed to load service session: %w", err)
	}

	log.Info().Int("scopes", len(s.cfg.Scopes)).Msg("Starting snapshot cycle...")
	startTime := time.Now()
	today := s.builder.Now()

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	var (
		batch    []model.MetricsSnapshot
		sent     int
		failed   int
		sendErrs []error
	)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.producer.Produce(ctx, batch); err != nil {
			log.Error().Err(err).Int("batch_size", len(batch)).Msg("Failed to send snapshot batch to Kafka")
			observability.SnapshotsProduced.WithLabelValues("error").Add(float64(len(batch)))
			failed += len(batch)
			sendErrs = append(sendErrs, err)
		} else {
			observability.SnapshotsProduced.WithLabelValues("success").Add(float64(len(batch)))
			sent += len(batch)
		}
		batch = nil
	}

	for _, scope := range s.cfg.Scopes {
		if ctx.Err() != nil {
			log.Info().Msg("Context cancelled during snapshot cycle.")
			break
		}
		resp, err := s.metricsSvc.GetProviderMetrics(ctx, sess, dto.ProviderMetricsRequest{
			Filter: model.Filter{
				TenantID:     scope.TenantID,
				DealerID:     scope.DealerID,
				StartDate:    today,
				EndDate:      today,
				ProviderType: model.ProviderAll,
			},
		})
		if err != nil {
			log.Error().Err(err).Str("tenant_id", scope.TenantID).Str("dealer_id", scope.DealerID).Msg("Failed to compute snapshot")
			observability.SnapshotsProduced.WithLabelValues("error").Inc()
			failed++
			continue
		}
		batch = append(batch, model.MetricsSnapshot{
			ID:          uuid.NewString(),
			CapturedAt:  today.UTC(),
			WindowStart: resp.Window.Start,
			WindowEnd:   resp.Window.End,
			Metrics:     resp.Metrics,
		})
		if len(batch) >= batchSize {
			flush()
		}
	}
	flush()

	log.Info().
		Int("sent", sent).
		Int("failed", failed).
		Dur("duration", time.Since(startTime)).
		Msg("Finished snapshot cycle.")

	if len(sendErrs) > 0 {
		return fmt.Errorf("kafka produce error: %w", errors.Join(sendErrs...))
	}
	return nil
}
