package model

// MetricsRecord is the flat per tenant/dealer metrics view rendered by the
// dashboard cards. Rates are preformatted percentage strings.
type MetricsRecord struct {
	TenantID string `json:"tenantId"`
	DealerID string `json:"dealerId"`

	ThreadsInitiated           int64  `json:"threadsInitiated"`
	ThreadsSuccess             int64  `json:"threadsSuccess"`
	ThreadsApiFailure          int64  `json:"threadsApiFailure"`
	ThreadsDeliveryFailure     int64  `json:"threadsDeliveryFailure"`
	ThreadsFailure             int64  `json:"threadsFailure"`
	ThreadsApiFailureRate      string `json:"threadsApiFailureRate"`
	ThreadsDeliveryFailureRate string `json:"threadsDeliveryFailureRate"`
	ThreadsFailureRate         string `json:"threadsFailureRate"`

	NonThreadsInitiated           int64  `json:"nonThreadsInitiated"`
	NonThreadsSuccess             int64  `json:"nonThreadsSuccess"`
	NonThreadsApiFailure          int64  `json:"nonThreadsApiFailure"`
	NonThreadsDeliveryFailure     int64  `json:"nonThreadsDeliveryFailure"`
	NonThreadsFailure             int64  `json:"nonThreadsFailure"`
	NonThreadsApiFailureRate      string `json:"nonThreadsApiFailureRate"`
	NonThreadsDeliveryFailureRate string `json:"nonThreadsDeliveryFailureRate"`
	NonThreadsFailureRate         string `json:"nonThreadsFailureRate"`

	TwilioInitiated           int64  `json:"twilioInitiated"`
	TwilioSuccess             int64  `json:"twilioSuccess"`
	TwilioApiFailure          int64  `json:"twilioApiFailure"`
	TwilioDeliveryFailure     int64  `json:"twilioDeliveryFailure"`
	TwilioFailure             int64  `json:"twilioFailure"`
	TwilioApiFailureRate      string `json:"twilioApiFailureRate"`
	TwilioDeliveryFailureRate string `json:"twilioDeliveryFailureRate"`
	TwilioFailureRate         string `json:"twilioFailureRate"`

	TotalInitiated   int64  `json:"totalInitiated"`
	TotalSuccess     int64  `json:"totalSuccess"`
	TotalFailure     int64  `json:"totalFailure"`
	TotalFailureRate string `json:"totalFailureRate"`
}
