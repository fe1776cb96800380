package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/rs/zerolog/log"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/dto"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/repository"
)

type elasticsearchSnapshotRepository struct {
	esTypedClient *elasticsearch.TypedClient
	indexPrefix   string
}

func NewElasticsearchSnapshotRepository(cfg *config.Config) (repository.SnapshotRepository, error) {
	typedClient, err := elasticsearch.NewTypedClient(clientConfig(cfg))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Typed Elasticsearch Client in Repository")
		return nil, err
	}

	return &elasticsearchSnapshotRepository{
		esTypedClient: typedClient,
		indexPrefix:   cfg.Elasticsearch.SnapshotIndex,
	}, nil
}

func (r *elasticsearchSnapshotRepository) Search(ctx context.Context, req dto.SnapshotHistoryRequest) (*dto.SnapshotHistoryResponse, error) {
	res, err := r.esTypedClient.Search().
		Index(fmt.Sprintf("%s-*", r.indexPrefix)).
		Request(BuildSnapshotSearch(req)).
		Do(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error executing Elasticsearch search via TypedClient")
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}

	snapshots := make([]model.MetricsSnapshot, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var snap model.MetricsSnapshot
		if err := json.Unmarshal(hit.Source_, &snap); err != nil {
			log.Error().Err(err).Msg("Error unmarshalling Elasticsearch hit source")
			continue
		}
		snapshots = append(snapshots, snap)
	}

	var total int64
	if res.Hits.Total != nil {
		total = res.Hits.Total.Value
	}

	log.Debug().Int64("total_hits", total).Int("returned_hits", len(snapshots)).Msg("Elasticsearch search successful")
	return &dto.SnapshotHistoryResponse{
		Snapshots:  snapshots,
		TotalCount: total,
	}, nil
}

// BuildSnapshotSearch filters on the capture time range and, when set, the
// tenant and dealer keyword fields. Newest snapshots come first.
func BuildSnapshotSearch(req dto.SnapshotHistoryRequest) *search.Request {
	startTimeStr := req.StartTime.UTC().Format(time.RFC3339)
	endTimeStr := req.EndTime.UTC().Format(time.RFC3339)

	filters := []types.Query{{
		Range: map[string]types.RangeQuery{
			"@timestamp": types.DateRangeQuery{
				Gte: &startTimeStr,
				Lte: &endTimeStr,
			},
		},
	}}
	if req.TenantID != "" {
		filters = append(filters, termQuery("metrics.tenantId.keyword", req.TenantID))
	}
	if req.DealerID != "" {
		filters = append(filters, termQuery("metrics.dealerId.keyword", req.DealerID))
	}

	size := req.Size
	order := sortorder.Desc
	return &search.Request{
		Query: &types.Query{
			Bool: &types.BoolQuery{Filter: filters},
		},
		Size: &size,
		Sort: []types.SortCombinations{
			types.SortOptions{
				SortOptions: map[string]types.FieldSort{
					"@timestamp": {Order: &order},
				},
			},
		},
	}
}

func termQuery(field, value string) types.Query {
	return types.Query{
		Term: map[string]types.TermQuery{
			field: {Value: value},
		},
	}
}
