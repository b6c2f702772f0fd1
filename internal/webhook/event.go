// Package webhook ingests asynchronous processor notifications and
// reconciles them onto the local ledger.
package webhook

import (
	"encoding/json"
	"time"
)

// Envelope is the processor's event wrapper. The embedded object's shape
// depends on Type and is decoded lazily by the reconciler that handles it.
type Envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Event types reconciled by this service. Anything else is logged and
// acknowledged so the processor stops redelivering it.
const (
	TypeChargeSucceeded     = "charge.succeeded"
	TypeChargeFailed        = "charge.failed"
	TypeIntentSucceeded     = "payment_intent.succeeded"
	TypeIntentFailed        = "payment_intent.payment_failed"
	TypeInvoicePaid         = "invoice.paid"
	TypeInvoiceFailed       = "invoice.payment_failed"
	TypeSubscriptionCreated = "customer.subscription.created"
	TypeSubscriptionUpdated = "customer.subscription.updated"
	TypeSubscriptionDeleted = "customer.subscription.deleted"
	TypeMethodAttached      = "payment_method.attached"
)

type ChargeObject struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	FailureMessage string `json:"failure_message"`
}

type PaymentIntentObject struct {
	ID               string `json:"id"`
	LatestCharge     string `json:"latest_charge"`
	LastPaymentError string `json:"last_payment_error"`
}

type InvoiceObject struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
	AmountPaid   string `json:"amount_paid"`
	Currency     string `json:"currency"`
	PeriodStart  int64  `json:"period_start"`
	PeriodEnd    int64  `json:"period_end"`
}

type SubscriptionObject struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	TrialStart         int64  `json:"trial_start"`
	TrialEnd           int64  `json:"trial_end"`
}

type PaymentMethodObject struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Type     string `json:"type"`
}

func unixTime(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}
