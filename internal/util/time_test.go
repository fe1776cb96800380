package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comms-metrics-backend/internal/model"
)

func TestParseTimeFlexible(t *testing.T) {
	got, err := ParseTimeFlexible("2024-02-14T10:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 14, 3, 0, 0, 0, time.UTC), got)

	got, err = ParseTimeFlexible("1707879600000")
	require.NoError(t, err)
	assert.Equal(t, int64(1707879600), got.Unix())

	_, err = ParseTimeFlexible("yesterday")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	got, err := ParseDate("2024-02-29", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), got)

	_, err = ParseDate("2023-02-29", loc)
	assert.Error(t, err)
	_, err = ParseDate("14/02/2024", nil)
	assert.Error(t, err)
}

func TestParseTimeOfDay(t *testing.T) {
	cases := map[string]model.TimeOfDay{
		"08:30":    {Hour: 8, Minute: 30},
		"23:59:59": {Hour: 23, Minute: 59, Second: 59},
		" 00:00 ":  {},
	}
	for in, want := range cases {
		got, err := ParseTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"24:00", "8h", ""} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}
