package model

import "time"

// QueryAudit records one query sent to the events backend.
type QueryAudit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RequestID    string    `gorm:"size:64;index" json:"requestId"`
	Operation    string    `gorm:"size:32" json:"operation"`
	Category     string    `gorm:"size:32" json:"category,omitempty"`
	TenantID     string    `gorm:"size:64;index" json:"tenantId,omitempty"`
	DealerID     string    `gorm:"size:64;index" json:"dealerId,omitempty"`
	UserID       string    `gorm:"size:64" json:"userId,omitempty"`
	QueryText    string    `gorm:"type:text" json:"queryText"`
	RowCount     int       `json:"rowCount"`
	DurationMs   int64     `json:"durationMs"`
	Status       string    `gorm:"size:16" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (QueryAudit) TableName() string {
	return "query_audits"
}
