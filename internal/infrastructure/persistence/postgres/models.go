package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentModel struct {
	ID                string
	UserID            string
	Amount            decimal.Decimal
	RefundedAmount    decimal.Decimal
	Currency          string
	Status            string
	MethodType        string
	MethodID          *string
	ProcessorIntentID *string
	ProcessorChargeID *string
	Description       *string
	FailureReason     *string
	ProcessedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type SubscriptionModel struct {
	ID                      string
	UserID                  string
	PlanID                  string
	Amount                  decimal.Decimal
	Currency                string
	Status                  string
	ProcessorSubscriptionID *string
	ProcessorCustomerID     *string
	CurrentPeriodStart      *time.Time
	CurrentPeriodEnd        *time.Time
	CanceledAt              *time.Time
	TrialStart              *time.Time
	TrialEnd                *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type PaymentMethodModel struct {
	ID                string
	UserID            string
	Type              string
	ProcessorMethodID *string
	LastFourDigits    *string
	Brand             *string
	BankName          *string
	IsDefault         bool
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OutboxMessage is one durable domain event awaiting publication.
type OutboxMessage struct {
	ID            string
	EventName     string
	CorrelationID string
	Payload       []byte
	OccurredOn    time.Time
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Attempts      int
}

// WebhookEventModel journals processor webhook deliveries. The unique
// provider event id is what makes replayed deliveries collapse to one
// processing pass.
type WebhookEventModel struct {
	ProviderEventID string
	EventType       string
	ProcessedAt     *time.Time
	ProcessingError *string
	CreatedAt       time.Time
}
