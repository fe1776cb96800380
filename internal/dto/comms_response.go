package dto

import (
	"time"

	"comms-metrics-backend/internal/model"
)

// Window echoes the resolved time bounds used for a query.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type FailureDetailsResponse struct {
	RequestID string                   `json:"requestId"`
	Category  model.FailureCategory    `json:"category"`
	Window    Window                   `json:"window"`
	Rows      []model.FailureDetailRow `json:"rows"`
	Count     int                      `json:"count"`
	Truncated bool                     `json:"truncated"`
}

type ProviderMetricsResponse struct {
	RequestID string              `json:"requestId"`
	Window    Window              `json:"window"`
	Metrics   model.MetricsRecord `json:"metrics"`
}

// ErrorPayload is the degraded result attached to error responses so the
// dashboard can render an empty table next to the error message.
type ErrorPayload struct {
	RequestID string `json:"requestId,omitempty"`
	Rows      []any  `json:"rows"`
	Error     bool   `json:"error"`
}
