package mapper_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comms-metrics-backend/internal/mapper"
	"comms-metrics-backend/internal/model"
)

func TestAggregateProviderCounts(t *testing.T) {
	rows := []model.Row{
		{"providerType": "GTC", "count": 10},
		{"providerType": "TWILIO", "count": 5},
	}

	rec, err := mapper.AggregateProviderCounts(rows, "T1", "D1")
	require.NoError(t, err)

	assert.Equal(t, "T1", rec.TenantID)
	assert.Equal(t, "D1", rec.DealerID)
	assert.EqualValues(t, 10, rec.ThreadsInitiated)
	assert.EqualValues(t, 10, rec.ThreadsSuccess)
	assert.EqualValues(t, 5, rec.TwilioInitiated)
	assert.EqualValues(t, 5, rec.TwilioSuccess)
	assert.EqualValues(t, 0, rec.NonThreadsInitiated)
	assert.EqualValues(t, 15, rec.TotalInitiated)
	assert.EqualValues(t, 15, rec.TotalSuccess)
	assert.EqualValues(t, 0, rec.TotalFailure)
	assert.Equal(t, "0%", rec.TotalFailureRate)
	assert.Equal(t, "0%", rec.ThreadsFailureRate)
	assert.Equal(t, "0%", rec.NonThreadsFailureRate)
}

func TestAggregateProviderCounts_SumsRepeatedProvidersAndCoercesCounts(t *testing.T) {
	rows := []model.Row{
		{"tenantId": "T1", "dealerId": "D1", "providerType": "GTC", "count": "7"},
		{"tenantId": "T1", "dealerId": "D2", "providerType": "gtc", "count": json.Number("3")},
		{"tenantId": "T1", "dealerId": "D2", "providerType": "TWILIO", "count": float64(2)},
		{"tenantId": "T1", "dealerId": "D2", "providerType": "EMAIL", "count": 100},
	}

	rec, err := mapper.AggregateProviderCounts(rows, "T1", "")
	require.NoError(t, err)
	assert.EqualValues(t, 10, rec.ThreadsInitiated)
	assert.EqualValues(t, 2, rec.TwilioInitiated)
	assert.EqualValues(t, 12, rec.TotalInitiated)
}

func TestAggregateProviderCounts_LeadingZeroIsDecimal(t *testing.T) {
	rec, err := mapper.AggregateProviderCounts([]model.Row{
		{"providerType": "GTC", "count": "010"},
	}, "T1", "")
	require.NoError(t, err)
	assert.EqualValues(t, 10, rec.ThreadsInitiated)
}

func TestAggregateProviderCounts_Empty(t *testing.T) {
	rec, err := mapper.AggregateProviderCounts(nil, "T1", "D1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, rec.TotalInitiated)
	assert.Equal(t, "0%", rec.TotalFailureRate)
	assert.Equal(t, "0%", rec.TwilioApiFailureRate)
}

func TestAggregateProviderCounts_MalformedRows(t *testing.T) {
	tests := []struct {
		name string
		row  model.Row
	}{
		{"missing provider", model.Row{"count": 1}},
		{"missing count", model.Row{"providerType": "GTC"}},
		{"null count", model.Row{"providerType": "GTC", "count": nil}},
		{"non numeric count", model.Row{"providerType": "GTC", "count": "many"}},
		{"negative count", model.Row{"providerType": "GTC", "count": -1}},
		{"boolean count", model.Row{"providerType": "GTC", "count": true}},
		{"fractional count", model.Row{"providerType": "GTC", "count": 1.5}},
		{"fractional count text", model.Row{"providerType": "GTC", "count": "2.5"}},
		{"overflowing count text", model.Row{"providerType": "GTC", "count": "1e30"}},
		{"overflowing uint count", model.Row{"providerType": "GTC", "count": uint64(1 << 63)}},
		{"boolean provider", model.Row{"providerType": true, "count": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapper.AggregateProviderCounts([]model.Row{tt.row}, "T1", "D1")
			assert.ErrorIs(t, err, mapper.ErrMalformedRow)
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0%", mapper.FormatRate(0, 0))
	assert.Equal(t, "0%", mapper.FormatRate(5, 0))
	assert.Equal(t, "0%", mapper.FormatRate(0, 15))
	assert.Equal(t, "33.3%", mapper.FormatRate(1, 3))
	assert.Equal(t, "66.7%", mapper.FormatRate(2, 3))
	assert.Equal(t, "100.0%", mapper.FormatRate(4, 4))
}
