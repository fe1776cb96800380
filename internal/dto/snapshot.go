package dto

import (
	"time"

	"comms-metrics-backend/internal/model"
)

type SnapshotHistoryRequest struct {
	StartTime time.Time
	EndTime   time.Time
	TenantID  string
	DealerID  string
	Size      int
}

type SnapshotHistoryResponse struct {
	Snapshots  []model.MetricsSnapshot `json:"snapshots"`
	TotalCount int64                   `json:"totalCount"`
}
