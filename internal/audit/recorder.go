package audit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"comms-metrics-backend/internal/model"
)

const maxRecent = 500

type Recorder interface {
	Record(ctx context.Context, entry model.QueryAudit) error
	Recent(ctx context.Context, limit int) ([]model.QueryAudit, error)
}

type gormRecorder struct {
	db *gorm.DB
}

// NewRecorder returns a MySQL-backed recorder, or a no-op one when db is nil.
func NewRecorder(db *gorm.DB) Recorder {
	if db == nil {
		return noopRecorder{}
	}
	return &gormRecorder{db: db}
}

func (r *gormRecorder) Record(ctx context.Context, entry model.QueryAudit) error {
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Error().Err(err).Str("request_id", entry.RequestID).Msg("Failed to write query audit")
		return fmt.Errorf("failed to write query audit: %w", err)
	}
	return nil
}

func (r *gormRecorder) Recent(ctx context.Context, limit int) ([]model.QueryAudit, error) {
	limit = clampLimit(limit)
	var audits []model.QueryAudit
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read query audits: %w", err)
	}
	return audits, nil
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, model.QueryAudit) error { return nil }

func (noopRecorder) Recent(context.Context, int) ([]model.QueryAudit, error) {
	return []model.QueryAudit{}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > maxRecent {
		return maxRecent
	}
	return limit
}
