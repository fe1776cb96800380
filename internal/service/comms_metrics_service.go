package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"comms-metrics-backend/internal/audit"
	"comms-metrics-backend/internal/dto"
	"comms-metrics-backend/internal/mapper"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/query"
	"comms-metrics-backend/internal/repository"
)

var ErrMissingScope = errors.New("tenantId or dealerId is required")

const (
	operationFailureDetails  = "failure_details"
	operationProviderMetrics = "provider_metrics"
)

type CommsMetricsService interface {
	GetFailureDetails(ctx context.Context, sess model.Session, req dto.FailureDetailsRequest) (*dto.FailureDetailsResponse, error)
	GetProviderMetrics(ctx context.Context, sess model.Session, req dto.ProviderMetricsRequest) (*dto.ProviderMetricsResponse, error)
}

type commsMetricsService struct {
	builder   *query.Builder
	eventRepo repository.EventRepository
	recorder  audit.Recorder
}

func NewCommsMetricsService(builder *query.Builder, eventRepo repository.EventRepository, recorder audit.Recorder) CommsMetricsService {
	return &commsMetricsService{
		builder:   builder,
		eventRepo: eventRepo,
		recorder:  recorder,
	}
}

func (s *commsMetricsService) GetFailureDetails(ctx context.Context, sess model.Session, req dto.FailureDetailsRequest) (*dto.FailureDetailsResponse, error) {
	requestID := ensureRequestID(req.RequestID)
	q := s.builder.BuildQuery(req.Category, req.Filter)
	start, end := s.builder.Window(req.Filter)

	log.Info().
		Str("request_id", requestID).
		Str("category", string(req.Category)).
		Str("tenant_id", req.Filter.TenantID).
		Str("dealer_id", req.Filter.DealerID).
		Time("start", start).
		Time("end", end).
		Msg("Getting failure details")

	entry := s.newAudit(requestID, operationFailureDetails, sess, req.Filter.TenantID, req.Filter.DealerID, q)
	entry.Category = string(req.Category)

	began := time.Now()
	rows, err := s.eventRepo.Execute(ctx, sess, q)
	if err != nil {
		s.finishAudit(ctx, entry, began, 0, err)
		return nil, fmt.Errorf("failure details %s: %w", req.Category, err)
	}
	details, err := mapper.MapFailureRows(rows)
	if err != nil {
		s.finishAudit(ctx, entry, began, len(rows), err)
		return nil, fmt.Errorf("failure details %s: %w", req.Category, err)
	}
	s.finishAudit(ctx, entry, began, len(details), nil)

	return &dto.FailureDetailsResponse{
		RequestID: requestID,
		Category:  req.Category,
		Window:    dto.Window{Start: start, End: end},
		Rows:      details,
		Count:     len(details),
		Truncated: len(details) >= query.RowLimit,
	}, nil
}

func (s *commsMetricsService) GetProviderMetrics(ctx context.Context, sess model.Session, req dto.ProviderMetricsRequest) (*dto.ProviderMetricsResponse, error) {
	if !req.Filter.HasScope() {
		return nil, ErrMissingScope
	}
	requestID := ensureRequestID(req.RequestID)
	tenantID, dealerID := req.Filter.TenantID, req.Filter.DealerID
	q := s.builder.BuildAggregateQuery(tenantID, dealerID, req.Filter)
	start, end := s.builder.Window(req.Filter)

	log.Info().
		Str("request_id", requestID).
		Str("tenant_id", tenantID).
		Str("dealer_id", dealerID).
		Str("provider_type", string(req.Filter.ProviderType)).
		Time("start", start).
		Time("end", end).
		Msg("Getting provider metrics")

	entry := s.newAudit(requestID, operationProviderMetrics, sess, tenantID, dealerID, q)

	began := time.Now()
	rows, err := s.eventRepo.Execute(ctx, sess, q)
	if err != nil {
		s.finishAudit(ctx, entry, began, 0, err)
		return nil, fmt.Errorf("provider metrics: %w", err)
	}
	rec, err := mapper.AggregateProviderCounts(rows, tenantID, dealerID)
	if err != nil {
		s.finishAudit(ctx, entry, began, len(rows), err)
		return nil, fmt.Errorf("provider metrics: %w", err)
	}
	s.finishAudit(ctx, entry, began, len(rows), nil)

	return &dto.ProviderMetricsResponse{
		RequestID: requestID,
		Window:    dto.Window{Start: start, End: end},
		Metrics:   *rec,
	}, nil
}

func (s *commsMetricsService) newAudit(requestID, operation string, sess model.Session, tenantID, dealerID string, q query.Query) model.QueryAudit {
	return model.QueryAudit{
		RequestID: requestID,
		Operation: operation,
		TenantID:  tenantID,
		DealerID:  dealerID,
		UserID:    sess.UserID,
		QueryText: q.Text,
	}
}

// finishAudit never fails the request: audit write errors are only logged.
func (s *commsMetricsService) finishAudit(ctx context.Context, entry model.QueryAudit, began time.Time, rowCount int, err error) {
	entry.DurationMs = time.Since(began).Milliseconds()
	entry.RowCount = rowCount
	entry.Status = "success"
	if err != nil {
		entry.Status = "error"
		entry.ErrorMessage = err.Error()
		log.Error().Err(err).Str("request_id", entry.RequestID).Str("operation", entry.Operation).Msg("Events query failed")
	}
	if recErr := s.recorder.Record(ctx, entry); recErr != nil {
		log.Warn().Err(recErr).Str("request_id", entry.RequestID).Msg("Query audit not recorded")
	}
}

func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
