package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"comms-metrics-backend/internal/dto"
	"comms-metrics-backend/internal/repository"
)

const (
	defaultHistorySize = 50
	maxHistorySize     = 500
	defaultHistorySpan = 7 * 24 * time.Hour
)

var ErrInvalidTimeRange = errors.New("startTime must not be after endTime")

type SnapshotQueryService interface {
	GetHistory(ctx context.Context, req dto.SnapshotHistoryRequest) (*dto.SnapshotHistoryResponse, error)
}

type snapshotQueryService struct {
	repo repository.SnapshotRepository
	now  func() time.Time
}

func NewSnapshotQueryService(repo repository.SnapshotRepository) SnapshotQueryService {
	return &snapshotQueryService{repo: repo, now: time.Now}
}

// GetHistory defaults to the last seven days and 50 snapshots.
func (s *snapshotQueryService) GetHistory(ctx context.Context, req dto.SnapshotHistoryRequest) (*dto.SnapshotHistoryResponse, error) {
	if req.EndTime.IsZero() {
		req.EndTime = s.now()
	}
	if req.StartTime.IsZero() {
		req.StartTime = req.EndTime.Add(-defaultHistorySpan)
	}
	if req.StartTime.After(req.EndTime) {
		return nil, ErrInvalidTimeRange
	}
	switch {
	case req.Size <= 0:
		req.Size = defaultHistorySize
	case req.Size > maxHistorySize:
		req.Size = maxHistorySize
	}

	log.Info().
		Time("start", req.StartTime).
		Time("end", req.EndTime).
		Str("tenant_id", req.TenantID).
		Str("dealer_id", req.DealerID).
		Int("size", req.Size).
		Msg("Searching metric snapshots")

	res, err := s.repo.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	return res, nil
}
