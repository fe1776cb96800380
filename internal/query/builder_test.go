package query_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/query"
)

var fixedNow = time.Date(2024, time.February, 14, 10, 30, 0, 0, time.UTC)

func newBuilder(t *testing.T) *query.Builder {
	t.Helper()
	b, err := query.NewBuilder("communication_events", query.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return b
}

func TestNewBuilder_RejectsBadTableNames(t *testing.T) {
	for _, name := range []string{"", "events; DROP TABLE x", "1events", "a.b.c", "events--"} {
		_, err := query.NewBuilder(name)
		assert.Error(t, err, name)
	}
	_, err := query.NewBuilder("comms.communication_events")
	assert.NoError(t, err)
}

func TestBuildQuery_PredicateFragmentsPerCategory(t *testing.T) {
	b := newBuilder(t)

	tests := []struct {
		category model.FailureCategory
		contains []string
		absent   []string
		args     []any
	}{
		{
			category: model.ThreadsAPI,
			contains: []string{"eventStatus = $3", "messageType = $4", "errorCategory = $5"},
			args:     []any{"FAILED", "THREAD", "API"},
		},
		{
			category: model.ThreadsDelivery,
			contains: []string{"eventStatus = $3", "messageType = $4", "errorCategory = $5"},
			args:     []any{"FAILED", "THREAD", "DELIVERY"},
		},
		{
			category: model.ThreadsTotal,
			contains: []string{"eventStatus = $3", "messageType = $4"},
			absent:   []string{"errorCategory"},
			args:     []any{"FAILED", "THREAD"},
		},
		{
			category: model.NonThreadsAPI,
			contains: []string{"eventStatus = $3", "messageType = $4", "errorCategory = $5"},
			args:     []any{"FAILED", "NON_THREAD", "API"},
		},
		{
			category: model.NonThreadsDelivery,
			contains: []string{"eventStatus = $3", "messageType = $4", "errorCategory = $5"},
			args:     []any{"FAILED", "NON_THREAD", "DELIVERY"},
		},
		{
			category: model.NonThreadsTotal,
			contains: []string{"eventStatus = $3", "messageType = $4"},
			absent:   []string{"errorCategory"},
			args:     []any{"FAILED", "NON_THREAD"},
		},
		{
			category: model.TwilioAPI,
			contains: []string{"errorMessage IS NOT NULL", "providerType = $3", "errorCategory = $4"},
			absent:   []string{"eventStatus", "messageType"},
			args:     []any{"TWILIO", "API"},
		},
		{
			category: model.TwilioDelivery,
			contains: []string{"errorMessage IS NOT NULL", "providerType = $3", "errorCategory = $4"},
			absent:   []string{"eventStatus", "messageType"},
			args:     []any{"TWILIO", "DELIVERY"},
		},
		{
			category: model.TwilioTotal,
			contains: []string{"errorMessage IS NOT NULL", "providerType = $3"},
			absent:   []string{"eventStatus", "messageType", "errorCategory"},
			args:     []any{"TWILIO"},
		},
	}

	require.Len(t, tests, len(model.FailureCategories))
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			q := b.BuildQuery(tt.category, model.Filter{})
			for _, frag := range tt.contains {
				assert.Contains(t, q.Text, frag)
			}
			for _, frag := range tt.absent {
				assert.NotContains(t, q.Text, frag)
			}
			require.Len(t, q.Args, 2+len(tt.args))
			assert.Equal(t, tt.args, q.Args[2:])
			assert.Len(t, query.PredicatesFor(tt.category).Clauses(), len(tt.contains))
		})
	}
}

func TestBuildQuery_AlwaysNewestFirstWithRowCap(t *testing.T) {
	b := newBuilder(t)
	for _, c := range model.FailureCategories {
		q := b.BuildQuery(c, model.Filter{TenantID: "T1"})
		assert.True(t, strings.HasSuffix(q.Text, "ORDER BY timestamp DESC LIMIT 1000"), q.Text)
	}
}

func TestBuildQuery_DefaultsToCurrentMonthAndDailyWindow(t *testing.T) {
	b := newBuilder(t)
	q := b.BuildQuery(model.ThreadsTotal, model.Filter{})

	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, start.Unix(), q.Args[0])
	assert.Equal(t, end.Unix(), q.Args[1])
	assert.Contains(t, q.Text, "timestamp >= $1 AND timestamp <= $2")
}

func TestBuildQuery_UsesExplicitBoundsVerbatim(t *testing.T) {
	b := newBuilder(t)
	f := model.Filter{
		StartDate: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		StartTime: &model.TimeOfDay{Hour: 9},
		EndTime:   &model.TimeOfDay{Hour: 17, Minute: 30},
	}
	q := b.BuildQuery(model.TwilioTotal, f)

	// no chronological validation: start after end is passed through.
	assert.Equal(t, time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC).Unix(), q.Args[0])
	assert.Equal(t, time.Date(2024, time.March, 1, 17, 30, 0, 0, time.UTC).Unix(), q.Args[1])
}

func TestBuildQuery_EmptyAndMissingScopeAreIdentical(t *testing.T) {
	b := newBuilder(t)
	missing := b.BuildQuery(model.ThreadsAPI, model.Filter{})
	empty := b.BuildQuery(model.ThreadsAPI, model.Filter{TenantID: "", DealerID: "  "})
	assert.Equal(t, missing, empty)
	assert.NotContains(t, missing.Text, "tenantId =")
	assert.NotContains(t, missing.Text, "dealerId =")
}

func TestBuildQuery_ScopeValuesAreBound(t *testing.T) {
	b := newBuilder(t)
	q := b.BuildQuery(model.ThreadsAPI, model.Filter{TenantID: "T1' OR '1'='1", DealerID: "D1"})

	assert.Contains(t, q.Text, "tenantId = $6")
	assert.Contains(t, q.Text, "dealerId = $7")
	assert.NotContains(t, q.Text, "T1'")
	assert.Equal(t, []any{"T1' OR '1'='1", "D1"}, q.Args[5:])
}

func TestBuildAggregateQuery(t *testing.T) {
	b := newBuilder(t)

	q := b.BuildAggregateQuery("T1", "D1", model.Filter{ProviderType: model.ProviderAll})
	assert.Equal(t,
		"SELECT tenantId, dealerId, providerType, COUNT(*) AS count FROM communication_events "+
			"WHERE timestamp >= $1 AND timestamp <= $2 AND tenantId = $3 AND dealerId = $4 "+
			"GROUP BY tenantId, dealerId, providerType",
		q.Text)
	assert.Equal(t, []any{"T1", "D1"}, q.Args[2:])

	q = b.BuildAggregateQuery("", "D9", model.Filter{ProviderType: model.ProviderTwilio})
	assert.Contains(t, q.Text, "dealerId = $3 AND providerType = $4")
	assert.NotContains(t, q.Text, "tenantId =")
	assert.Equal(t, []any{"D9", "TWILIO"}, q.Args[2:])
}

func TestWindow_RespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	b, err := query.NewBuilder("events",
		query.WithLocation(loc),
		query.WithClock(func() time.Time { return time.Date(2024, time.January, 1, 2, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)

	// 02:00 UTC on Jan 1 is still Dec 31 in UTC-5.
	start, end := b.Window(model.Filter{})
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2023, time.December, 31, 23, 59, 59, 0, loc), end)
}
