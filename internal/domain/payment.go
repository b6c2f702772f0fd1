// Package domain encodes the payment ledger aggregates and their attributes.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentProcessing        PaymentStatus = "PROCESSING"
	PaymentSucceeded         PaymentStatus = "SUCCEEDED"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentCancelled         PaymentStatus = "CANCELLED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// MethodType identifies the kind of instrument charged.
type MethodType string

const (
	MethodCard        MethodType = "CARD"
	MethodBankAccount MethodType = "BANK_ACCOUNT"
)

// paymentTransitions is the explicit legality table checked before every
// mutation. Statuses absent from the map are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:           {PaymentProcessing, PaymentSucceeded, PaymentFailed, PaymentCancelled},
	PaymentProcessing:        {PaymentSucceeded, PaymentFailed},
	PaymentSucceeded:         {PaymentRefunded, PaymentPartiallyRefunded},
	PaymentPartiallyRefunded: {PaymentRefunded, PaymentPartiallyRefunded},
}

// Payment records one charge attempt against the external processor. The
// processor intent id is the correlation key webhook reconciliation uses to
// find this record again.
type Payment struct {
	eventRecorder

	ID         string
	UserID     string
	Amount     Money
	Status     PaymentStatus
	MethodType MethodType
	MethodID   *string

	// RefundedAmount accumulates across partial refunds so the final partial
	// refund that exhausts the charge lands in REFUNDED, not
	// PARTIALLY_REFUNDED.
	RefundedAmount Money

	ProcessorIntentID *string
	ProcessorChargeID *string

	Description   *string
	FailureReason *string

	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewPayment(id, userID string, amount Money, methodType MethodType) (*Payment, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("payment ID")
	}
	if userID == "" {
		return nil, NewMissingRequiredFieldError("user ID")
	}
	if methodType == "" {
		return nil, NewMissingRequiredFieldError("payment method type")
	}

	now := time.Now().UTC()
	return &Payment{
		ID:             id,
		UserID:         userID,
		Amount:         amount,
		Status:         PaymentPending,
		MethodType:     methodType,
		RefundedAmount: Money{Amount: decimal.Zero, Currency: amount.Currency},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (p *Payment) transition(target PaymentStatus) error {
	allowed, ok := paymentTransitions[p.Status]
	if !ok || !slices.Contains(allowed, target) {
		return NewInvalidTransitionError(string(p.Status), string(target))
	}
	p.Status = target
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Process records the processor's in-flight charge reference. Callable again
// while already processing to refresh the reference.
func (p *Payment) Process(intentID string) error {
	if intentID == "" {
		return NewMissingRequiredFieldError("processor intent ID")
	}
	if p.Status != PaymentProcessing {
		if err := p.transition(PaymentProcessing); err != nil {
			return err
		}
	} else {
		p.UpdatedAt = time.Now().UTC()
	}
	p.ProcessorIntentID = &intentID
	return nil
}

// Succeed marks the charge settled and queues a PaymentProcessed event.
// Calling it on an already-succeeded payment is a no-op, so webhook replays
// cannot double-emit.
func (p *Payment) Succeed() error {
	if p.Status == PaymentSucceeded {
		return nil
	}
	if err := p.transition(PaymentSucceeded); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.ProcessedAt = &now
	p.record(newEvent(EventPaymentProcessed, p.ID, p.eventPayload()))
	return nil
}

// Fail marks the charge failed with a mandatory reason and queues a
// PaymentFailed event. Idempotent when already failed.
func (p *Payment) Fail(reason string) error {
	if reason == "" {
		return NewMissingRequiredFieldError("failure reason")
	}
	if p.Status == PaymentFailed {
		return nil
	}
	if err := p.transition(PaymentFailed); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.FailureReason = &reason
	p.ProcessedAt = &now
	p.record(newEvent(EventPaymentFailed, p.ID, p.eventPayload()))
	return nil
}

// Cancel, Refund and PartialRefund update state without emitting events.
// The asymmetry with Succeed/Fail mirrors how downstream consumers behave
// today; see DESIGN.md before changing it.

func (p *Payment) Cancel() error {
	return p.transition(PaymentCancelled)
}

func (p *Payment) Refund() error {
	if err := p.transition(PaymentRefunded); err != nil {
		return err
	}
	p.RefundedAmount = p.Amount
	return nil
}

func (p *Payment) PartialRefund(amount Money) error {
	total, err := p.RefundedAmount.Add(amount)
	if err != nil {
		return err
	}
	if exceeds, err := p.Amount.LessThan(total); err != nil {
		return err
	} else if exceeds {
		return NewInvalidAmountError(total.String())
	}
	if total.Equal(p.Amount) {
		if err := p.transition(PaymentRefunded); err != nil {
			return err
		}
	} else if err := p.transition(PaymentPartiallyRefunded); err != nil {
		return err
	}
	p.RefundedAmount = total
	return nil
}

// AttachCharge records the processor's settled charge id, the secondary
// correlation key used by charge.* webhook events.
func (p *Payment) AttachCharge(chargeID string) {
	if chargeID == "" {
		return
	}
	p.ProcessorChargeID = &chargeID
	p.UpdatedAt = time.Now().UTC()
}

func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentFailed, PaymentCancelled, PaymentRefunded:
		return true
	default:
		return false
	}
}

func (p *Payment) eventPayload() map[string]any {
	payload := map[string]any{
		"paymentId": p.ID,
		"userId":    p.UserID,
		"amount":    p.Amount.Amount.String(),
		"currency":  p.Amount.Currency,
		"status":    string(p.Status),
	}
	if p.MethodID != nil {
		payload["paymentMethodId"] = *p.MethodID
	}
	if p.FailureReason != nil {
		payload["failureReason"] = *p.FailureReason
	}
	return payload
}

// ReconstitutePayment is the constructor used when loading from the database.
// Pending events are never persisted, so the queue starts empty.
func ReconstitutePayment(
	id, userID string,
	amount, refundedAmount Money,
	status PaymentStatus,
	methodType MethodType,
	methodID, intentID, chargeID, description, failureReason *string,
	processedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		ID:                id,
		UserID:            userID,
		Amount:            amount,
		RefundedAmount:    refundedAmount,
		Status:            status,
		MethodType:        methodType,
		MethodID:          methodID,
		ProcessorIntentID: intentID,
		ProcessorChargeID: chargeID,
		Description:       description,
		FailureReason:     failureReason,
		ProcessedAt:       processedAt,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
}
