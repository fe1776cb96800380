package model

import (
	"encoding/json"
	"time"
)

// Row is one tabular row as returned by a backend, keyed by column name.
type Row map[string]any

// FailureDetailRow is a flattened view of one failure event.
type FailureDetailRow struct {
	Timestamp    time.Time       `json:"timestamp"`
	TenantID     string          `json:"tenantId"`
	DealerID     string          `json:"dealerId"`
	EventSubType string          `json:"eventSubType"`
	EventMessage string          `json:"eventMessage"`
	ErrorMessage string          `json:"errorMessage"`
	Origin       string          `json:"origin"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}
