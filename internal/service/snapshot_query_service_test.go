package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comms-metrics-backend/internal/dto"
)

type capturingSnapshotRepo struct {
	got dto.SnapshotHistoryRequest
}

func (r *capturingSnapshotRepo) Search(_ context.Context, req dto.SnapshotHistoryRequest) (*dto.SnapshotHistoryResponse, error) {
	r.got = req
	return &dto.SnapshotHistoryResponse{TotalCount: 0}, nil
}

func TestGetHistory_Defaults(t *testing.T) {
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)
	repo := &capturingSnapshotRepo{}
	svc := &snapshotQueryService{repo: repo, now: func() time.Time { return now }}

	_, err := svc.GetHistory(context.Background(), dto.SnapshotHistoryRequest{TenantID: "T1"})
	require.NoError(t, err)

	assert.Equal(t, now, repo.got.EndTime)
	assert.Equal(t, now.Add(-7*24*time.Hour), repo.got.StartTime)
	assert.Equal(t, defaultHistorySize, repo.got.Size)
	assert.Equal(t, "T1", repo.got.TenantID)
}

func TestGetHistory_ClampsSize(t *testing.T) {
	repo := &capturingSnapshotRepo{}
	svc := NewSnapshotQueryService(repo)

	_, err := svc.GetHistory(context.Background(), dto.SnapshotHistoryRequest{Size: 10_000})
	require.NoError(t, err)
	assert.Equal(t, maxHistorySize, repo.got.Size)
}

func TestGetHistory_RejectsInvertedRange(t *testing.T) {
	svc := NewSnapshotQueryService(&capturingSnapshotRepo{})
	_, err := svc.GetHistory(context.Background(), dto.SnapshotHistoryRequest{
		StartTime: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
