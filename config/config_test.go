package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScopes(t *testing.T) {
	got := ParseScopes(" T1:D1, T2: , :D3 , : ,T4")
	assert.Equal(t, []Scope{
		{TenantID: "T1", DealerID: "D1"},
		{TenantID: "T2"},
		{DealerID: "D3"},
		{TenantID: "T4"},
	}, got)

	assert.Empty(t, ParseScopes(""))
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ANALYTICS_BACKEND", "TimescaleDB")
	t.Setenv("ANALYTICS_TIMEOUT", "12s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SNAPSHOT_SCOPES", "T1:D1")
	t.Setenv("SNAPSHOT_ENABLED", "true")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendTimescaleDB, cfg.Analytics.Backend)
	assert.Equal(t, 12*time.Second, cfg.Analytics.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []Scope{{TenantID: "T1", DealerID: "D1"}}, cfg.Snapshot.Scopes)
	assert.True(t, cfg.Snapshot.Enabled)
	assert.Equal(t, "communication_events", cfg.Analytics.TableName)
}
