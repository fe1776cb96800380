package dto

import "comms-metrics-backend/internal/model"

type FailureDetailsRequest struct {
	RequestID string
	Category  model.FailureCategory
	Filter    model.Filter
}

type ProviderMetricsRequest struct {
	RequestID string
	Filter    model.Filter
}
