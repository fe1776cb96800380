package dto

import "comms-metrics-backend/internal/model"

type AuditListResponse struct {
	Audits []model.QueryAudit `json:"audits"`
}
