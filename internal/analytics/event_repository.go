package analytics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/observability"
	"comms-metrics-backend/internal/query"
	"comms-metrics-backend/internal/repository"
)

const backendName = "analytics"

type analyticsEventRepository struct {
	cfg        ClientConfig
	httpClient *http.Client
}

func NewAnalyticsEventRepository(cfg *config.Config) repository.EventRepository {
	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: cfg.Analytics.Timeout,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
	log.Info().Str("url", cfg.Analytics.URL).Str("db", cfg.Analytics.DBName).Msg("Analytics event repository initialized")
	return NewEventRepository(ClientConfig{
		URL:       cfg.Analytics.URL,
		DBName:    cfg.Analytics.DBName,
		TableName: cfg.Analytics.TableName,
	}, &http.Client{Transport: transport, Timeout: cfg.Analytics.Timeout})
}

// NewEventRepository builds a repository that creates one Client per call,
// bound to the caller's session.
func NewEventRepository(cfg ClientConfig, httpClient *http.Client) repository.EventRepository {
	return &analyticsEventRepository{cfg: cfg, httpClient: httpClient}
}

func (r *analyticsEventRepository) Execute(ctx context.Context, sess model.Session, q query.Query) ([]model.Row, error) {
	start := time.Now()
	rows, err := NewClient(r.cfg, r.httpClient, sess).Execute(ctx, q)
	observability.BackendLatency.WithLabelValues(backendName).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.BackendQueries.WithLabelValues(backendName, "error").Inc()
		return nil, err
	}
	observability.BackendQueries.WithLabelValues(backendName, "success").Inc()
	return rows, nil
}

func (r *analyticsEventRepository) Backend() string {
	return backendName
}
