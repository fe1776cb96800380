package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	BackendQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "comms_backend_queries_total", Help: "Queries sent to the events backend"},
		[]string{"backend", "result"},
	)
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "comms_backend_query_latency_seconds", Help: "Events backend query latency"},
		[]string{"backend"},
	)
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "comms_api_requests_total", Help: "Dashboard API requests"},
		[]string{"endpoint", "status"},
	)
	SnapshotsProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "comms_snapshots_produced_total", Help: "Metric snapshots produced"},
		[]string{"result"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(BackendQueries, BackendLatency, APIRequests, SnapshotsProduced)
}
