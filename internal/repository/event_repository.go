package repository

import (
	"context"

	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/query"
)

// EventRepository runs a built query against the communication events store
// on behalf of sess and returns the raw rows.
type EventRepository interface {
	Execute(ctx context.Context, sess model.Session, q query.Query) ([]model.Row, error)
	Backend() string
}
