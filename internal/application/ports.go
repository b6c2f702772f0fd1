package application

import (
	"context"
	"time"

	"github.com/mwhayford/rentledger/internal/domain"
)

// Processor statuses returned synchronously by the gateway.
const (
	ProcessorStatusSucceeded      = "succeeded"
	ProcessorStatusRequiresAction = "requires_action"
	ProcessorStatusActive         = "active"
	ProcessorStatusTrialing       = "trialing"
)

type ChargeRequest struct {
	Amount    string
	Currency  string
	MethodRef *string
	Metadata  map[string]string
}

type ChargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type SubscriptionRequest struct {
	CustomerRef string
	PlanRef     string
	MethodRef   *string
	Metadata    map[string]string
}

type SubscriptionResponse struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customer_id"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}

type RefundRequest struct {
	ChargeRef string
	Amount    *string
	Currency  string
}

type RefundResponse struct {
	ID string `json:"id"`
}

// ProcessorClient is the port for the external payment processor. Calls are
// synchronous round-trips with no retry: a timeout surfaces immediately to
// the command handler, which decides what it means for the local record.
type ProcessorClient interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (*SubscriptionResponse, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error)
	CancelSubscription(ctx context.Context, subscriptionRef string) error
}

// PaymentStore is the persistence port for payments. Create and Update must
// drain the aggregate's pending events into the outbox in the same
// transaction as the row write.
type PaymentStore interface {
	Create(ctx context.Context, payment *domain.Payment) error
	Update(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	FindByProcessorRef(ctx context.Context, ref string) (*domain.Payment, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error)
}

// SubscriptionStore is the persistence port for subscriptions, with the same
// event-draining contract as PaymentStore.
type SubscriptionStore interface {
	Create(ctx context.Context, subscription *domain.Subscription) error
	Update(ctx context.Context, subscription *domain.Subscription) error
	FindByID(ctx context.Context, id string) (*domain.Subscription, error)
	FindByProcessorRef(ctx context.Context, ref string) (*domain.Subscription, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.Subscription, error)
}

// PaymentMethodStore persists stored instruments. SetDefault performs the
// whole clear-then-set sequence atomically so concurrent callers cannot
// leave two defaults behind.
type PaymentMethodStore interface {
	Create(ctx context.Context, method *domain.PaymentMethod) error
	Update(ctx context.Context, method *domain.PaymentMethod) error
	FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, methodID string) error
}

// EventDedup tracks processor event ids so at-least-once webhook delivery
// collapses to exactly-once processing. MarkProcessed is called only after
// the reconciling write commits.
type EventDedup interface {
	AlreadyProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}

// EventPublisher delivers domain events to downstream collaborators.
// Delivery is best-effort at-least-once; a publish failure never rolls back
// the state change that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
