package rest

import (
	"time"

	"github.com/mwhayford/rentledger/internal/domain"
)

type ProcessPaymentRequest struct {
	UserID      string  `json:"userId" validate:"required"`
	Amount      string  `json:"amount" validate:"required"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	MethodType  string  `json:"methodType" validate:"required,oneof=CARD BANK_ACCOUNT"`
	MethodID    *string `json:"methodId"`
	Description *string `json:"description"`
}

type ProcessSubscriptionRequest struct {
	UserID   string  `json:"userId" validate:"required"`
	PlanID   string  `json:"planId" validate:"required"`
	Amount   string  `json:"amount" validate:"required"`
	Currency string  `json:"currency" validate:"required,len=3"`
	MethodID *string `json:"methodId"`
}

type RefundPaymentRequest struct {
	// Amount omitted means a full refund of the remaining balance.
	Amount   *string `json:"amount"`
	Currency string  `json:"currency" validate:"required,len=3"`
}

type CreatePaymentMethodRequest struct {
	UserID            string `json:"userId" validate:"required"`
	Type              string `json:"type" validate:"required,oneof=CARD BANK_ACCOUNT"`
	ProcessorMethodID string `json:"processorMethodId" validate:"required"`
	LastFourDigits    string `json:"lastFourDigits" validate:"required,len=4,numeric"`
	Brand             string `json:"brand"`
	BankName          string `json:"bankName"`
	MakeDefault       bool   `json:"makeDefault"`
}

type SetDefaultMethodRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type Payment struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	Amount            string     `json:"amount"`
	Currency          string     `json:"currency"`
	RefundedAmount    string     `json:"refundedAmount"`
	Status            string     `json:"status"`
	MethodType        string     `json:"methodType"`
	MethodID          *string    `json:"methodId,omitempty"`
	ProcessorIntentID *string    `json:"processorIntentId,omitempty"`
	ProcessorChargeID *string    `json:"processorChargeId,omitempty"`
	Description       *string    `json:"description,omitempty"`
	FailureReason     *string    `json:"failureReason,omitempty"`
	ProcessedAt       *time.Time `json:"processedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type Subscription struct {
	ID                      string     `json:"id"`
	UserID                  string     `json:"userId"`
	PlanID                  string     `json:"planId"`
	Amount                  string     `json:"amount"`
	Currency                string     `json:"currency"`
	Status                  string     `json:"status"`
	ProcessorSubscriptionID *string    `json:"processorSubscriptionId,omitempty"`
	ProcessorCustomerID     *string    `json:"processorCustomerId,omitempty"`
	CurrentPeriodStart      *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd        *time.Time `json:"currentPeriodEnd,omitempty"`
	CanceledAt              *time.Time `json:"canceledAt,omitempty"`
	TrialStart              *time.Time `json:"trialStart,omitempty"`
	TrialEnd                *time.Time `json:"trialEnd,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

type PaymentMethod struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Type              string    `json:"type"`
	ProcessorMethodID *string   `json:"processorMethodId,omitempty"`
	LastFourDigits    *string   `json:"lastFourDigits,omitempty"`
	Brand             *string   `json:"brand,omitempty"`
	BankName          *string   `json:"bankName,omitempty"`
	IsDefault         bool      `json:"isDefault"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func ToAPIPayment(p *domain.Payment) Payment {
	return Payment{
		ID:                p.ID,
		UserID:            p.UserID,
		Amount:            p.Amount.Amount.String(),
		Currency:          p.Amount.Currency,
		RefundedAmount:    p.RefundedAmount.Amount.String(),
		Status:            string(p.Status),
		MethodType:        string(p.MethodType),
		MethodID:          p.MethodID,
		ProcessorIntentID: p.ProcessorIntentID,
		ProcessorChargeID: p.ProcessorChargeID,
		Description:       p.Description,
		FailureReason:     p.FailureReason,
		ProcessedAt:       p.ProcessedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func ToAPIPayments(payments []*domain.Payment) []Payment {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		out = append(out, ToAPIPayment(p))
	}
	return out
}

func ToAPISubscription(s *domain.Subscription) Subscription {
	return Subscription{
		ID:                      s.ID,
		UserID:                  s.UserID,
		PlanID:                  s.PlanID,
		Amount:                  s.Amount.Amount.String(),
		Currency:                s.Amount.Currency,
		Status:                  string(s.Status),
		ProcessorSubscriptionID: s.ProcessorSubscriptionID,
		ProcessorCustomerID:     s.ProcessorCustomerID,
		CurrentPeriodStart:      s.CurrentPeriodStart,
		CurrentPeriodEnd:        s.CurrentPeriodEnd,
		CanceledAt:              s.CanceledAt,
		TrialStart:              s.TrialStart,
		TrialEnd:                s.TrialEnd,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
}

func ToAPISubscriptions(subscriptions []*domain.Subscription) []Subscription {
	out := make([]Subscription, 0, len(subscriptions))
	for _, s := range subscriptions {
		out = append(out, ToAPISubscription(s))
	}
	return out
}

func ToAPIPaymentMethod(m *domain.PaymentMethod) PaymentMethod {
	return PaymentMethod{
		ID:                m.ID,
		UserID:            m.UserID,
		Type:              string(m.Type),
		ProcessorMethodID: m.ProcessorMethodID,
		LastFourDigits:    m.LastFourDigits,
		Brand:             m.Brand,
		BankName:          m.BankName,
		IsDefault:         m.IsDefault,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func ToAPIPaymentMethods(methods []*domain.PaymentMethod) []PaymentMethod {
	out := make([]PaymentMethod, 0, len(methods))
	for _, m := range methods {
		out = append(out, ToAPIPaymentMethod(m))
	}
	return out
}
