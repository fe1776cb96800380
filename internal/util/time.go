package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"comms-metrics-backend/internal/model"
)

const DateLayout = "2006-01-02"

// ParseTimeFlexible accepts RFC 3339 or epoch milliseconds and returns UTC.
func ParseTimeFlexible(timeStr string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, timeStr)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, timeStr)
	if err == nil {
		return t.UTC(), nil
	}

	ms, err := strconv.ParseInt(timeStr, 10, 64)
	if err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseTimeOfDay parses HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (model.TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return model.TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return model.TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", s)
}
