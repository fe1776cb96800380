package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/model"
)

type SnapshotConsumer interface {
	// FetchMessage returns the raw message even when the value cannot be
	// decoded, so the caller can still commit past it.
	FetchMessage(ctx context.Context) (*model.MetricsSnapshot, kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaSnapshotConsumer struct {
	reader MessageReader
}

func NewKafkaSnapshotConsumer(lc fx.Lifecycle, cfg *config.Config) (SnapshotConsumer, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topic:          cfg.Kafka.SnapshotTopic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        5 * time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
	c := NewSnapshotConsumer(reader)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Str("group", cfg.Kafka.ConsumerGroup).Msg("Closing Kafka consumer")
			return c.Close()
		},
	})
	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.SnapshotTopic).
		Str("group", cfg.Kafka.ConsumerGroup).
		Msg("Kafka consumer initialized")
	return c, nil
}

func NewSnapshotConsumer(reader MessageReader) SnapshotConsumer {
	return &kafkaSnapshotConsumer{reader: reader}
}

func (c *kafkaSnapshotConsumer) FetchMessage(ctx context.Context) (*model.MetricsSnapshot, kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, kafka.Message{}, err
	}
	log.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("Fetched message from Kafka")
	var snap model.MetricsSnapshot
	if err := json.Unmarshal(msg.Value, &snap); err != nil {
		log.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to unmarshal Kafka message value")
		return nil, msg, err
	}
	return &snap, msg, nil
}

func (c *kafkaSnapshotConsumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		log.Error().Err(err).Int("count", len(msgs)).Msg("Failed to commit Kafka messages")
		return err
	}
	log.Debug().Int("count", len(msgs)).Int64("last_offset", msgs[len(msgs)-1].Offset).Msg("Committed Kafka messages")
	return nil
}

func (c *kafkaSnapshotConsumer) Close() error {
	return c.reader.Close()
}
