package timescaledb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"comms-metrics-backend/config"
)

// ProvideTimescaleDBPool opens the pool used by the direct events backend.
// It returns a nil pool when the analytics HTTP backend is selected.
func ProvideTimescaleDBPool(lc fx.Lifecycle, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Analytics.Backend != config.BackendTimescaleDB {
		log.Info().Str("backend", cfg.Analytics.Backend).Msg("TimescaleDB backend not selected, skipping pool creation")
		return nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.TimescaleDB.DSN)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse TimescaleDB DSN")
		return nil, fmt.Errorf("invalid TimescaleDB DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create connection pool to TimescaleDB")
		return nil, fmt.Errorf("failed to connect to TimescaleDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("Failed to ping TimescaleDB")
		return nil, fmt.Errorf("failed to ping TimescaleDB: %w", err)
	}
	log.Info().Msg("TimescaleDB connection pool created and verified.")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing TimescaleDB connection pool...")
			pool.Close()
			return nil
		},
	})
	return pool, nil
}
