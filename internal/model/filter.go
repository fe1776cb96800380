package model

import (
	"fmt"
	"strings"
	"time"
)

type ProviderType string

const (
	ProviderAll    ProviderType = "ALL"
	ProviderGTC    ProviderType = "GTC"
	ProviderTwilio ProviderType = "TWILIO"
)

// ParseProviderType accepts ALL, GTC or TWILIO in any case. Empty means ALL.
func ParseProviderType(s string) (ProviderType, error) {
	switch ProviderType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ProviderAll:
		return ProviderAll, nil
	case ProviderGTC:
		return ProviderGTC, nil
	case ProviderTwilio:
		return ProviderTwilio, nil
	}
	return "", fmt.Errorf("invalid providerType: %s", s)
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On returns the instant at this time of day on the date of d, in loc.
func (t TimeOfDay) On(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, t.Hour, t.Minute, t.Second, 0, loc)
}

// Filter is the dashboard's filter state. Zero dates and nil times mean
// "use the default"; the bounds are not checked for chronological order.
type Filter struct {
	TenantID     string
	DealerID     string
	StartDate    time.Time
	EndDate      time.Time
	StartTime    *TimeOfDay
	EndTime      *TimeOfDay
	ProviderType ProviderType
}

// HasScope reports whether a tenant or dealer restriction is present.
func (f Filter) HasScope() bool {
	return strings.TrimSpace(f.TenantID) != "" || strings.TrimSpace(f.DealerID) != ""
}
