package domain

import (
	"slices"
	"time"
)

// SubscriptionStatus represents the current state of a recurring billing
// arrangement.
type SubscriptionStatus string

const (
	SubscriptionIncomplete SubscriptionStatus = "INCOMPLETE"
	SubscriptionTrialing   SubscriptionStatus = "TRIALING"
	SubscriptionActive     SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue    SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled   SubscriptionStatus = "CANCELED"
	SubscriptionUnpaid     SubscriptionStatus = "UNPAID"
	SubscriptionPaused     SubscriptionStatus = "PAUSED"
)

// PastDue subscriptions may recover to Active when the processor reports a
// later successful invoice, and may degrade to Unpaid or Canceled.
var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionIncomplete: {SubscriptionTrialing, SubscriptionActive, SubscriptionCanceled},
	SubscriptionTrialing:   {SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled, SubscriptionUnpaid, SubscriptionPaused},
	SubscriptionActive:     {SubscriptionPastDue, SubscriptionCanceled, SubscriptionUnpaid, SubscriptionPaused},
	SubscriptionPastDue:    {SubscriptionActive, SubscriptionCanceled, SubscriptionUnpaid},
	SubscriptionPaused:     {SubscriptionActive},
}

// Subscription records one recurring billing arrangement. The processor
// subscription id is the correlation key for webhook reconciliation.
type Subscription struct {
	eventRecorder

	ID     string
	UserID string
	PlanID string
	Amount Money
	Status SubscriptionStatus

	ProcessorSubscriptionID *string
	ProcessorCustomerID     *string

	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CanceledAt         *time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSubscription(id, userID, planID string, amount Money) (*Subscription, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("subscription ID")
	}
	if userID == "" {
		return nil, NewMissingRequiredFieldError("user ID")
	}
	if planID == "" {
		return nil, NewMissingRequiredFieldError("plan ID")
	}

	now := time.Now().UTC()
	return &Subscription{
		ID:        id,
		UserID:    userID,
		PlanID:    planID,
		Amount:    amount,
		Status:    SubscriptionIncomplete,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Subscription) transition(target SubscriptionStatus) error {
	allowed, ok := subscriptionTransitions[s.Status]
	if !ok || !slices.Contains(allowed, target) {
		return NewInvalidTransitionError(string(s.Status), string(target))
	}
	s.Status = target
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Activate is idempotent: it may be called repeatedly to refresh the billing
// period, and emits SubscriptionCreated only the first time the subscription
// becomes active.
func (s *Subscription) Activate(periodStart, periodEnd time.Time) error {
	wasActive := s.Status == SubscriptionActive
	if !wasActive {
		if err := s.transition(SubscriptionActive); err != nil {
			return err
		}
	} else {
		s.UpdatedAt = time.Now().UTC()
	}

	s.CurrentPeriodStart = &periodStart
	s.CurrentPeriodEnd = &periodEnd

	if !wasActive {
		s.record(newEvent(EventSubscriptionCreated, s.ID, map[string]any{
			"subscriptionId": s.ID,
			"userId":         s.UserID,
			"planId":         s.PlanID,
			"amount":         s.Amount.Amount.String(),
			"currency":       s.Amount.Currency,
			"status":         string(s.Status),
		}))
	}
	return nil
}

func (s *Subscription) StartTrial(trialStart, trialEnd time.Time) error {
	if err := s.transition(SubscriptionTrialing); err != nil {
		return err
	}
	s.TrialStart = &trialStart
	s.TrialEnd = &trialEnd
	return nil
}

func (s *Subscription) MarkPastDue() error {
	return s.transition(SubscriptionPastDue)
}

func (s *Subscription) MarkUnpaid() error {
	return s.transition(SubscriptionUnpaid)
}

func (s *Subscription) Cancel() error {
	if err := s.transition(SubscriptionCanceled); err != nil {
		return err
	}
	now := time.Now().UTC()
	s.CanceledAt = &now
	return nil
}

func (s *Subscription) Pause() error {
	return s.transition(SubscriptionPaused)
}

func (s *Subscription) Resume() error {
	return s.transition(SubscriptionActive)
}

func (s *Subscription) UpdatePlan(planID string, amount Money) error {
	if planID == "" {
		return NewMissingRequiredFieldError("plan ID")
	}
	s.PlanID = planID
	s.Amount = amount
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AttachProcessorRefs records the processor-side identifiers once the gateway
// acknowledges the subscription.
func (s *Subscription) AttachProcessorRefs(subscriptionID, customerID string) {
	if subscriptionID != "" {
		s.ProcessorSubscriptionID = &subscriptionID
	}
	if customerID != "" {
		s.ProcessorCustomerID = &customerID
	}
	s.UpdatedAt = time.Now().UTC()
}

func (s *Subscription) IsTerminal() bool {
	switch s.Status {
	case SubscriptionCanceled, SubscriptionUnpaid:
		return true
	default:
		return false
	}
}

// ReconstituteSubscription is the constructor used when loading from the
// database.
func ReconstituteSubscription(
	id, userID, planID string,
	amount Money,
	status SubscriptionStatus,
	processorSubscriptionID, processorCustomerID *string,
	currentPeriodStart, currentPeriodEnd, canceledAt, trialStart, trialEnd *time.Time,
	createdAt, updatedAt time.Time,
) *Subscription {
	return &Subscription{
		ID:                      id,
		UserID:                  userID,
		PlanID:                  planID,
		Amount:                  amount,
		Status:                  status,
		ProcessorSubscriptionID: processorSubscriptionID,
		ProcessorCustomerID:     processorCustomerID,
		CurrentPeriodStart:      currentPeriodStart,
		CurrentPeriodEnd:        currentPeriodEnd,
		CanceledAt:              canceledAt,
		TrialStart:              trialStart,
		TrialEnd:                trialEnd,
		CreatedAt:               createdAt,
		UpdatedAt:               updatedAt,
	}
}
