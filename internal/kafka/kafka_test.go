package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ckafka "comms-metrics-backend/internal/kafka"
	"comms-metrics-backend/internal/model"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func snapshot(tenant, dealer string) model.MetricsSnapshot {
	return model.MetricsSnapshot{
		ID:         "snap-" + tenant,
		CapturedAt: time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC),
		Metrics:    model.MetricsRecord{TenantID: tenant, DealerID: dealer, TotalInitiated: 4},
	}
}

func TestProduce_KeysByScope(t *testing.T) {
	w := &fakeWriter{}
	p := ckafka.NewSnapshotProducer(w, "snapshots")

	err := p.Produce(context.Background(), []model.MetricsSnapshot{snapshot("T1", "D1"), snapshot("T2", "")})
	require.NoError(t, err)

	require.Len(t, w.written, 2)
	assert.Equal(t, "T1:D1", string(w.written[0].Key))
	assert.Equal(t, "T2:", string(w.written[1].Key))

	var decoded model.MetricsSnapshot
	require.NoError(t, json.Unmarshal(w.written[0].Value, &decoded))
	assert.Equal(t, "snap-T1", decoded.ID)
	assert.EqualValues(t, 4, decoded.Metrics.TotalInitiated)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProduce_EmptyBatchIsNoop(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	p := ckafka.NewSnapshotProducer(w, "snapshots")
	assert.NoError(t, p.Produce(context.Background(), nil))
}

func TestProduce_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := ckafka.NewSnapshotProducer(w, "snapshots")
	assert.EqualError(t, p.Produce(context.Background(), []model.MetricsSnapshot{snapshot("T1", "D1")}), "broker down")
}

func TestFetchMessage(t *testing.T) {
	value, err := json.Marshal(snapshot("T1", "D1"))
	require.NoError(t, err)
	r := &fakeReader{queue: []kafka.Message{
		{Topic: "snapshots", Offset: 1, Value: value},
		{Topic: "snapshots", Offset: 2, Value: []byte("not json")},
	}}
	c := ckafka.NewSnapshotConsumer(r)

	snap, msg, err := c.FetchMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T1", snap.Metrics.TenantID)
	assert.EqualValues(t, 1, msg.Offset)

	snap, msg, err = c.FetchMessage(context.Background())
	assert.Error(t, err)
	assert.Nil(t, snap)
	assert.EqualValues(t, 2, msg.Offset, "undecodable message is still returned for commit tracking")

	require.NoError(t, c.CommitMessages(context.Background(), msg))
	assert.Len(t, r.committed, 1)
}
