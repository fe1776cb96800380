package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/model"
)

var ErrIndexingFailed = errors.New("snapshot indexing failed")

type SnapshotStore interface {
	StoreSnapshots(ctx context.Context, snapshots []model.MetricsSnapshot) error
	Close(ctx context.Context) error
}

type elasticSnapshotStore struct {
	bulkIndexer     esutil.BulkIndexer
	indexPrefix     string
	countSuccessful uint64
	countFailed     uint64
}

func newTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 10 * time.Second,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
}

func clientConfig(cfg *config.Config) elasticsearch.Config {
	return elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Transport: newTransport(),
	}
}

func NewElasticSnapshotStore(lc fx.Lifecycle, cfg *config.Config) (SnapshotStore, error) {
	if len(cfg.Elasticsearch.Addresses) == 0 {
		log.Error().Msg("Elasticsearch addresses are not configured.")
		return nil, errors.New("elasticsearch configuration missing")
	}
	esCfg := clientConfig(cfg)

	var esClient *elasticsearch.Client
	operation := func() error {
		var err error
		esClient, err = elasticsearch.NewClient(esCfg)
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error creating the Elasticsearch client")
			return err
		}

		res, err := esClient.Info(esClient.Info.WithContext(context.Background()))
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error during Elasticsearch Info() call")
			return err
		}
		defer res.Body.Close()
		if res.IsError() {
			errMsg := fmt.Errorf("elasticsearch Info() returned error status: %s", res.Status())
			log.Warn().Err(errMsg).Msg("Attempt failed: Elasticsearch ping returned error status")
			return errMsg
		}
		log.Info().Msg("Elasticsearch client initialized and connection verified")
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 2 * time.Second
	connectBackoff.MaxInterval = 15 * time.Second
	connectBackoff.MaxElapsedTime = 90 * time.Second

	log.Info().Msg("Attempting to connect to Elasticsearch with retries...")
	if err := backoff.Retry(operation, connectBackoff); err != nil {
		log.Error().Err(err).Msg("Failed to connect to Elasticsearch after multiple retries")
		return nil, err
	}

	store := &elasticSnapshotStore{indexPrefix: cfg.Elasticsearch.SnapshotIndex}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        esClient,
		Index:         IndexName(store.indexPrefix, time.Now()),
		NumWorkers:    cfg.Elasticsearch.BulkWorkers,
		FlushBytes:    cfg.Elasticsearch.FlushBytes,
		FlushInterval: cfg.Elasticsearch.FlushInterval,
		OnError: func(ctx context.Context, err error) {
			log.Error().Err(err).Msg("BulkIndexer error")
		},
		OnFlushStart: func(ctx context.Context) context.Context {
			log.Debug().Msg("BulkIndexer flush starting")
			return ctx
		},
		OnFlushEnd: func(ctx context.Context) {
			log.Debug().Msg("BulkIndexer flush ended")
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Error creating the BulkIndexer")
		return nil, err
	}
	store.bulkIndexer = bi
	log.Info().Str("index_prefix", store.indexPrefix).Msg("Elasticsearch BulkIndexer initialized")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Elasticsearch BulkIndexer...")
			return store.Close(ctx)
		},
	})

	return store, nil
}

// StoreSnapshots indexes snapshots and blocks until the bulk indexer has
// reported an outcome for each one. Snapshot IDs are used as document IDs, so
// storing the same batch again overwrites instead of duplicating.
func (s *elasticSnapshotStore) StoreSnapshots(ctx context.Context, snapshots []model.MetricsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)
	markFailed := func(id string) {
		atomic.AddUint64(&s.countFailed, 1)
		mu.Lock()
		failed = append(failed, id)
		mu.Unlock()
	}

	for _, snap := range snapshots {
		data, err := json.Marshal(snap)
		if err != nil {
			log.Error().Err(err).Str("snapshot_id", snap.ID).Msg("Failed to marshal snapshot for Elasticsearch")
			markFailed(snap.ID)
			continue
		}

		wg.Add(1)
		err = s.bulkIndexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			Index:      IndexName(s.indexPrefix, snap.CapturedAt),
			DocumentID: snap.ID,
			Body:       bytes.NewReader(data),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				defer wg.Done()
				atomic.AddUint64(&s.countSuccessful, 1)
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				defer wg.Done()
				markFailed(item.DocumentID)
				if err != nil {
					log.Error().Err(err).Str("document_id", item.DocumentID).Msg("Snapshot indexing failed")
					return
				}
				log.Error().Str("document_id", item.DocumentID).Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Snapshot indexing failed")
			},
		})
		if err != nil {
			// not queued, so no callback will fire
			wg.Done()
			log.Error().Err(err).Str("snapshot_id", snap.ID).Msg("Failed to add item to BulkIndexer")
			markFailed(snap.ID)
		}
	}
	log.Debug().Int("count", len(snapshots)).Msg("Added snapshots to Elasticsearch BulkIndexer queue")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d snapshots, first %q", ErrIndexingFailed, len(failed), len(snapshots), failed[0])
	}
	return nil
}

func (s *elasticSnapshotStore) Close(ctx context.Context) error {
	err := s.bulkIndexer.Close(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error closing BulkIndexer")
	} else {
		log.Info().Msg("BulkIndexer closed.")
	}

	stats := s.bulkIndexer.Stats()
	log.Info().
		Uint64("indexed", stats.NumIndexed).
		Uint64("added", stats.NumAdded).
		Uint64("flushed", stats.NumFlushed).
		Uint64("failed", stats.NumFailed).
		Uint64("requests", stats.NumRequests).
		Uint64("callback_successful", atomic.LoadUint64(&s.countSuccessful)).
		Uint64("callback_failed", atomic.LoadUint64(&s.countFailed)).
		Msg("Elasticsearch BulkIndexer final stats")

	return err
}

// IndexName returns the daily index for t, e.g. "comms-snapshots-2024-02-14".
func IndexName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, t.UTC().Format("2006-01-02"))
}
