package repository

import (
	"context"

	"comms-metrics-backend/internal/dto"
)

type SnapshotRepository interface {
	Search(ctx context.Context, req dto.SnapshotHistoryRequest) (*dto.SnapshotHistoryResponse, error)
}
