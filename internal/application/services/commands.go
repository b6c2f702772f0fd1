package services

import (
	"github.com/mwhayford/rentledger/internal/domain"
	"github.com/shopspring/decimal"
)

type ProcessPaymentCommand struct {
	UserID      string
	Amount      decimal.Decimal
	Currency    string
	MethodType  domain.MethodType
	MethodID    *string
	Description *string
}

type ProcessSubscriptionPaymentCommand struct {
	UserID   string
	PlanID   string
	Amount   decimal.Decimal
	Currency string
	MethodID *string
}

type RefundPaymentCommand struct {
	PaymentID string
	// Amount is nil for a full refund of whatever has not been refunded yet.
	Amount   *decimal.Decimal
	Currency string
}

type CreatePaymentMethodCommand struct {
	UserID            string
	Type              domain.MethodType
	ProcessorMethodID string
	LastFourDigits    string
	Brand             string
	BankName          string
	MakeDefault       bool
}
