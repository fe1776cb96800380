package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/elasticsearch"
	"comms-metrics-backend/internal/kafka"
	"comms-metrics-backend/internal/model"
)

type SnapshotConsumerService interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

type snapshotConsumerService struct {
	consumer    kafka.SnapshotConsumer
	store       elasticsearch.SnapshotStore
	batchSize   int
	maxWaitTime time.Duration
	retryDelay  time.Duration
}

func NewSnapshotConsumerService(
	consumer kafka.SnapshotConsumer,
	store elasticsearch.SnapshotStore,
	cfg *config.Config,
) SnapshotConsumerService {
	batchSize := cfg.Snapshot.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	maxWaitTime := cfg.Snapshot.MaxBatchWait
	if maxWaitTime <= 0 {
		maxWaitTime = 5 * time.Second
	}
	return &snapshotConsumerService{
		consumer:    consumer,
		store:       store,
		batchSize:   batchSize,
		maxWaitTime: maxWaitTime,
		retryDelay:  time.Second,
	}
}

func (s *snapshotConsumerService) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log.Info().Msg("Starting Snapshot Consumer Service loop...")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Snapshot Consumer Service loop stopping due to context cancellation.")
			return
		default:
		}

		if err := s.processBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("Context cancelled during batch processing.")
				return
			}
			log.Error().Err(err).Msg("Error processing consumer batch")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
		}
	}
}

// processBatch stores one batch and commits its offsets only after the store
// accepted it. Undecodable messages are committed so they are not redelivered
// forever.
func (s *snapshotConsumerService) processBatch(ctx context.Context) error {
	snapshots, messages, err := s.fetchBatch(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	if err := s.storeWithRetry(ctx, snapshots); err != nil {
		return err
	}

	if err := s.consumer.CommitMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed committing kafka messages: %w", err)
	}
	log.Info().Int("stored", len(snapshots)).Int("committed", len(messages)).Msg("Successfully processed and committed batch.")
	return nil
}

func (s *snapshotConsumerService) fetchBatch(ctx context.Context) ([]model.MetricsSnapshot, []kafkaGo.Message, error) {
	snapshots := make([]model.MetricsSnapshot, 0, s.batchSize)
	messages := make([]kafkaGo.Message, 0, s.batchSize)
	deadline := time.Now().Add(s.maxWaitTime)

	for len(messages) < s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		fetchCtx, cancel := context.WithTimeout(ctx, remaining)
		snap, msg, err := s.consumer.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if msg.Topic != "" {
				log.Warn().Int64("offset", msg.Offset).Msg("Skipping undecodable snapshot message")
				messages = append(messages, msg)
				continue
			}
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				log.Debug().Int("batch_size", len(messages)).Msg("Max wait time reached for batch, processing partial batch.")
				break
			}
			return nil, nil, fmt.Errorf("failed to fetch kafka message: %w", err)
		}

		snapshots = append(snapshots, *snap)
		messages = append(messages, msg)
	}
	return snapshots, messages, nil
}

// storeWithRetry keeps retrying the same batch until it is stored or ctx is
// done. Fetching more messages first would let a later commit skip past it.
func (s *snapshotConsumerService) storeWithRetry(ctx context.Context, snapshots []model.MetricsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for attempt := 1; ; attempt++ {
		err := s.store.StoreSnapshots(ctx, snapshots)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error().Err(err).Int("attempt", attempt).Int("batch_size", len(snapshots)).Msg("Failed to store snapshots to Elasticsearch, retrying batch")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
}
