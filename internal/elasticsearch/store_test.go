package elasticsearch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comms-metrics-backend/internal/model"
)

// fakeBulkIndexer reports item outcomes asynchronously, like a flush would.
type fakeBulkIndexer struct {
	mu      sync.Mutex
	items   []esutil.BulkIndexerItem
	reject  map[string]bool
	addErr  error
	silent  bool
	pending sync.WaitGroup
}

func (f *fakeBulkIndexer) Add(ctx context.Context, item esutil.BulkIndexerItem) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	f.items = append(f.items, item)
	f.mu.Unlock()
	if f.silent {
		return nil
	}

	f.pending.Add(1)
	go func() {
		defer f.pending.Done()
		time.Sleep(5 * time.Millisecond)
		if f.reject[item.DocumentID] {
			var res esutil.BulkIndexerResponseItem
			res.Status = 400
			res.Error.Type = "mapper_parsing_exception"
			res.Error.Reason = "failed to parse"
			item.OnFailure(ctx, item, res, nil)
			return
		}
		item.OnSuccess(ctx, item, esutil.BulkIndexerResponseItem{Status: 201})
	}()
	return nil
}

func (f *fakeBulkIndexer) Close(context.Context) error {
	f.pending.Wait()
	return nil
}

func (f *fakeBulkIndexer) Stats() esutil.BulkIndexerStats { return esutil.BulkIndexerStats{} }

func snapshots(ids ...string) []model.MetricsSnapshot {
	out := make([]model.MetricsSnapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.MetricsSnapshot{ID: id, CapturedAt: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)})
	}
	return out
}

func TestStoreSnapshots_WaitsForIndexing(t *testing.T) {
	bi := &fakeBulkIndexer{}
	store := &elasticSnapshotStore{bulkIndexer: bi, indexPrefix: "comms-snapshots"}

	require.NoError(t, store.StoreSnapshots(context.Background(), snapshots("a", "b")))

	require.Len(t, bi.items, 2)
	assert.Equal(t, "a", bi.items[0].DocumentID)
	assert.Equal(t, "comms-snapshots-2024-02-14", bi.items[0].Index)
	assert.EqualValues(t, 2, store.countSuccessful)
	assert.EqualValues(t, 0, store.countFailed)
}

func TestStoreSnapshots_ItemFailureIsReturned(t *testing.T) {
	bi := &fakeBulkIndexer{reject: map[string]bool{"b": true}}
	store := &elasticSnapshotStore{bulkIndexer: bi, indexPrefix: "comms-snapshots"}

	err := store.StoreSnapshots(context.Background(), snapshots("a", "b", "c"))
	require.ErrorIs(t, err, ErrIndexingFailed)
	assert.Contains(t, err.Error(), `"b"`)
	assert.EqualValues(t, 2, store.countSuccessful)
	assert.EqualValues(t, 1, store.countFailed)
}

func TestStoreSnapshots_AddFailureIsReturned(t *testing.T) {
	bi := &fakeBulkIndexer{addErr: errors.New("indexer closed")}
	store := &elasticSnapshotStore{bulkIndexer: bi, indexPrefix: "comms-snapshots"}

	err := store.StoreSnapshots(context.Background(), snapshots("a"))
	assert.ErrorIs(t, err, ErrIndexingFailed)
}

func TestStoreSnapshots_CancelledWhileWaiting(t *testing.T) {
	bi := &fakeBulkIndexer{silent: true}
	store := &elasticSnapshotStore{bulkIndexer: bi, indexPrefix: "comms-snapshots"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := store.StoreSnapshots(ctx, snapshots("a"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStoreSnapshots_Empty(t *testing.T) {
	bi := &fakeBulkIndexer{addErr: errors.New("must not be called")}
	store := &elasticSnapshotStore{bulkIndexer: bi}

	assert.NoError(t, store.StoreSnapshots(context.Background(), nil))
}
