package model

import (
	"fmt"
	"strings"
)

// FailureCategory crosses a channel with a failure phase.
type FailureCategory string

const (
	ThreadsAPI         FailureCategory = "THREADS_API"
	ThreadsDelivery    FailureCategory = "THREADS_DELIVERY"
	ThreadsTotal       FailureCategory = "THREADS_TOTAL"
	NonThreadsAPI      FailureCategory = "NON_THREADS_API"
	NonThreadsDelivery FailureCategory = "NON_THREADS_DELIVERY"
	NonThreadsTotal    FailureCategory = "NON_THREADS_TOTAL"
	TwilioAPI          FailureCategory = "TWILIO_API"
	TwilioDelivery     FailureCategory = "TWILIO_DELIVERY"
	TwilioTotal        FailureCategory = "TWILIO_TOTAL"
)

// FailureCategories lists every category in display order.
var FailureCategories = []FailureCategory{
	ThreadsAPI, ThreadsDelivery, ThreadsTotal,
	NonThreadsAPI, NonThreadsDelivery, NonThreadsTotal,
	TwilioAPI, TwilioDelivery, TwilioTotal,
}

func ParseFailureCategory(s string) (FailureCategory, error) {
	c := FailureCategory(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range FailureCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category: %s", s)
}
