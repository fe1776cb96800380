package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/model"
)

type SnapshotProducer interface {
	Produce(ctx context.Context, snapshots []model.MetricsSnapshot) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaSnapshotProducer struct {
	writer MessageWriter
	topic  string
}

func NewKafkaSnapshotProducer(lc fx.Lifecycle, cfg *config.Config) (SnapshotProducer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.SnapshotTopic == "" {
		log.Error().Msg("Kafka brokers or snapshot topic is not configured.")
		return nil, errors.New("kafka configuration missing")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.SnapshotTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.Snapshot.BatchSize,
		BatchTimeout: cfg.Snapshot.MaxBatchWait,
		RequiredAcks: kafka.RequireOne,
	}
	p := NewSnapshotProducer(writer, cfg.Kafka.SnapshotTopic)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka producer")
			return p.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.SnapshotTopic).Msg("Kafka producer initialized")
	return p, nil
}

func NewSnapshotProducer(writer MessageWriter, topic string) SnapshotProducer {
	return &kafkaSnapshotProducer{writer: writer, topic: topic}
}

// SnapshotKey partitions snapshots so one scope always lands on the same partition.
func SnapshotKey(s model.MetricsSnapshot) []byte {
	return []byte(s.Metrics.TenantID + ":" + s.Metrics.DealerID)
}

func (p *kafkaSnapshotProducer) Produce(ctx context.Context, snapshots []model.MetricsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(snapshots))
	for _, snap := range snapshots {
		value, err := json.Marshal(snap)
		if err != nil {
			log.Error().Err(err).Str("snapshot_id", snap.ID).Msg("Failed to marshal snapshot for Kafka")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   SnapshotKey(snap),
			Value: value,
		})
	}
	if len(messages) == 0 {
		log.Warn().Msg("No valid messages to produce.")
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write messages to Kafka")
		return err
	}

	log.Debug().Int("message_count", len(messages)).Str("topic", p.topic).Msg("Successfully produced messages to Kafka")
	return nil
}

func (p *kafkaSnapshotProducer) Close() error {
	return p.writer.Close()
}
