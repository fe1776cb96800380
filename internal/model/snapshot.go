package model

import "time"

type MetricsSnapshot struct {
	ID          string        `json:"id"`
	CapturedAt  time.Time     `json:"@timestamp"`
	WindowStart time.Time     `json:"windowStart"`
	WindowEnd   time.Time     `json:"windowEnd"`
	Metrics     MetricsRecord `json:"metrics"`
}
