package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/model"
)

// NewDB opens the MySQL database that holds query audits. A nil *gorm.DB is
// returned when no host is configured.
func NewDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Host == "" {
		log.Warn().Msg("DATABASE_HOST not set, query auditing disabled")
		return nil, nil
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Error().Err(err).Str("host", cfg.Database.Host).Msg("Failed to connect to MySQL")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&model.QueryAudit{}); err != nil {
		return nil, fmt.Errorf("failed to migrate query audit table: %w", err)
	}
	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("MySQL connection established")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			log.Info().Msg("Closing MySQL connection...")
			return sqlDB.Close()
		},
	})
	return db, nil
}
