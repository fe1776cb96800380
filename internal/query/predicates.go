package query

import "comms-metrics-backend/internal/model"

// Clause is a single column predicate. A clause with a nil Value renders
// without a bind variable (for example "errorMessage IS NOT NULL").
type Clause struct {
	Column string
	Op     string
	Value  any
}

// Predicates is the set of optional fragments selected for a failure category.
type Predicates struct {
	Status      *Clause
	MessageType *Clause
	ErrorClass  *Clause
}

// Clauses returns the non-nil fragments in render order.
func (p Predicates) Clauses() []Clause {
	out := make([]Clause, 0, 3)
	for _, c := range []*Clause{p.Status, p.MessageType, p.ErrorClass} {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

const (
	colTimestamp     = "timestamp"
	colTenantID      = "tenantId"
	colDealerID      = "dealerId"
	colProviderType  = "providerType"
	colEventStatus   = "eventStatus"
	colMessageType   = "messageType"
	colErrorCategory = "errorCategory"
	colErrorMessage  = "errorMessage"
)

var (
	statusFailed   = &Clause{Column: colEventStatus, Op: "=", Value: "FAILED"}
	errorPresent   = &Clause{Column: colErrorMessage, Op: "IS NOT NULL"}
	threadMessages = &Clause{Column: colMessageType, Op: "=", Value: "THREAD"}
	plainMessages  = &Clause{Column: colMessageType, Op: "=", Value: "NON_THREAD"}
	twilioMessages = &Clause{Column: colProviderType, Op: "=", Value: string(model.ProviderTwilio)}
	apiErrors      = &Clause{Column: colErrorCategory, Op: "=", Value: "API"}
	deliveryErrors = &Clause{Column: colErrorCategory, Op: "=", Value: "DELIVERY"}
)

// TOTAL categories leave ErrorClass unset so both API and delivery failures match.
var predicateTable = map[model.FailureCategory]Predicates{
	model.ThreadsAPI:         {Status: statusFailed, MessageType: threadMessages, ErrorClass: apiErrors},
	model.ThreadsDelivery:    {Status: statusFailed, MessageType: threadMessages, ErrorClass: deliveryErrors},
	model.ThreadsTotal:       {Status: statusFailed, MessageType: threadMessages},
	model.NonThreadsAPI:      {Status: statusFailed, MessageType: plainMessages, ErrorClass: apiErrors},
	model.NonThreadsDelivery: {Status: statusFailed, MessageType: plainMessages, ErrorClass: deliveryErrors},
	model.NonThreadsTotal:    {Status: statusFailed, MessageType: plainMessages},
	model.TwilioAPI:          {Status: errorPresent, MessageType: twilioMessages, ErrorClass: apiErrors},
	model.TwilioDelivery:     {Status: errorPresent, MessageType: twilioMessages, ErrorClass: deliveryErrors},
	model.TwilioTotal:        {Status: errorPresent, MessageType: twilioMessages},
}

// PredicatesFor returns the fragments for category. Unknown categories get none.
func PredicatesFor(category model.FailureCategory) Predicates {
	return predicateTable[category]
}
