package mapper

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"comms-metrics-backend/internal/model"
)

type channelTally struct {
	initiated       int64
	success         int64
	apiFailure      int64
	deliveryFailure int64
}

func (c channelTally) failure() int64 {
	return c.apiFailure + c.deliveryFailure
}

// AggregateProviderCounts folds per-provider counts into a MetricsRecord.
// GTC rows feed the threads channel and TWILIO rows the twilio channel; every
// counted event is both initiated and successful, so failure counts stay zero.
func AggregateProviderCounts(rows []model.Row, tenantID, dealerID string) (*model.MetricsRecord, error) {
	var threads, nonThreads, twilio channelTally

	for i, row := range rows {
		provider, err := requiredString(row, i, "providerType")
		if err != nil {
			return nil, err
		}
		count, err := requiredInt(row, i, "count")
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, malformed(i, "count", "negative count %d", count)
		}

		switch model.ProviderType(strings.ToUpper(provider)) {
		case model.ProviderGTC:
			threads.initiated += count
			threads.success += count
		case model.ProviderTwilio:
			twilio.initiated += count
			twilio.success += count
		default:
			log.Debug().Str("provider_type", provider).Int64("count", count).Msg("Skipping row with unknown provider type")
		}
	}

	rec := &model.MetricsRecord{TenantID: tenantID, DealerID: dealerID}

	rec.ThreadsInitiated = threads.initiated
	rec.ThreadsSuccess = threads.success
	rec.ThreadsApiFailure = threads.apiFailure
	rec.ThreadsDeliveryFailure = threads.deliveryFailure
	rec.ThreadsFailure = threads.failure()
	rec.ThreadsApiFailureRate = FormatRate(threads.apiFailure, threads.initiated)
	rec.ThreadsDeliveryFailureRate = FormatRate(threads.deliveryFailure, threads.initiated)
	rec.ThreadsFailureRate = FormatRate(threads.failure(), threads.initiated)

	rec.NonThreadsInitiated = nonThreads.initiated
	rec.NonThreadsSuccess = nonThreads.success
	rec.NonThreadsApiFailure = nonThreads.apiFailure
	rec.NonThreadsDeliveryFailure = nonThreads.deliveryFailure
	rec.NonThreadsFailure = nonThreads.failure()
	rec.NonThreadsApiFailureRate = FormatRate(nonThreads.apiFailure, nonThreads.initiated)
	rec.NonThreadsDeliveryFailureRate = FormatRate(nonThreads.deliveryFailure, nonThreads.initiated)
	rec.NonThreadsFailureRate = FormatRate(nonThreads.failure(), nonThreads.initiated)

	rec.TwilioInitiated = twilio.initiated
	rec.TwilioSuccess = twilio.success
	rec.TwilioApiFailure = twilio.apiFailure
	rec.TwilioDeliveryFailure = twilio.deliveryFailure
	rec.TwilioFailure = twilio.failure()
	rec.TwilioApiFailureRate = FormatRate(twilio.apiFailure, twilio.initiated)
	rec.TwilioDeliveryFailureRate = FormatRate(twilio.deliveryFailure, twilio.initiated)
	rec.TwilioFailureRate = FormatRate(twilio.failure(), twilio.initiated)

	rec.TotalInitiated = threads.initiated + nonThreads.initiated + twilio.initiated
	rec.TotalSuccess = threads.success + nonThreads.success + twilio.success
	rec.TotalFailure = threads.failure() + nonThreads.failure() + twilio.failure()
	rec.TotalFailureRate = FormatRate(rec.TotalFailure, rec.TotalInitiated)

	return rec, nil
}

// FormatRate renders failure/initiated as a one-decimal percentage. No
// initiated events or no failures render as "0%".
func FormatRate(failure, initiated int64) string {
	if initiated == 0 || failure == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(failure)/float64(initiated)*100)
}
