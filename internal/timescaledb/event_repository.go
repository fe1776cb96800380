package timescaledb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/observability"
	"comms-metrics-backend/internal/query"
	"comms-metrics-backend/internal/repository"
)

const backendName = "timescaledb"

var ErrQueryFailed = errors.New("timescaledb query failed")

type timescaleEventRepository struct {
	pool *pgxpool.Pool
}

func NewTimescaleEventRepository(pool *pgxpool.Pool) (repository.EventRepository, error) {
	if pool == nil {
		return nil, errors.New("TimescaleDB connection pool is required for EventRepository")
	}
	return &timescaleEventRepository{pool: pool}, nil
}

// Execute runs q directly. The session is only logged: row-level access is
// enforced by the database role behind the DSN.
func (r *timescaleEventRepository) Execute(ctx context.Context, sess model.Session, q query.Query) ([]model.Row, error) {
	log.Debug().Str("query", q.Text).Interface("args", q.Args).Str("user_id", sess.UserID).Msg("Executing TimescaleDB events query")

	start := time.Now()
	defer func() {
		observability.BackendLatency.WithLabelValues(backendName).Observe(time.Since(start).Seconds())
	}()

	rows, err := r.pool.Query(ctx, q.Text, q.Args...)
	if err != nil {
		observability.BackendQueries.WithLabelValues(backendName, "error").Inc()
		log.Error().Err(err).Str("query", q.Text).Msg("Failed to execute events query")
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		observability.BackendQueries.WithLabelValues(backendName, "error").Inc()
		log.Error().Err(err).Msg("Error iterating events rows")
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	observability.BackendQueries.WithLabelValues(backendName, "success").Inc()

	out := make([]model.Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, normalizeRow(m))
	}
	return out, nil
}

func (r *timescaleEventRepository) Backend() string {
	return backendName
}

// normalizeRow turns jsonb values back into raw JSON text so the mapper sees
// the same shapes as from the analytics endpoint. The timestamp column is a
// bigint of epoch seconds, matching the bound window arguments, so it passes
// through unchanged.
func normalizeRow(m map[string]any) model.Row {
	row := make(model.Row, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any, []any:
			if b, err := json.Marshal(val); err == nil {
				row[k] = string(b)
				continue
			}
			row[k] = val
		default:
			row[k] = val
		}
	}
	return row
}
