package domain

import (
	"time"
)

// PaymentMethod records one stored payment instrument for a user. At most one
// active method per user may be the default; the repository enforces that
// with a single conditional update rather than a read-then-write sequence.
type PaymentMethod struct {
	ID     string
	UserID string
	Type   MethodType

	ProcessorMethodID *string
	LastFourDigits    *string
	Brand             *string
	BankName          *string

	IsDefault bool
	IsActive  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPaymentMethod(id, userID string, methodType MethodType) (*PaymentMethod, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("payment method ID")
	}
	if userID == "" {
		return nil, NewMissingRequiredFieldError("user ID")
	}
	if methodType == "" {
		return nil, NewMissingRequiredFieldError("payment method type")
	}

	now := time.Now().UTC()
	return &PaymentMethod{
		ID:        id,
		UserID:    userID,
		Type:      methodType,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (m *PaymentMethod) SetAsDefault() error {
	if !m.IsActive {
		return NewInvalidTransitionError("INACTIVE", "DEFAULT")
	}
	m.IsDefault = true
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *PaymentMethod) ClearDefault() {
	m.IsDefault = false
	m.UpdatedAt = time.Now().UTC()
}

// Deactivate also clears the default flag so a removed method can never
// remain the user's default.
func (m *PaymentMethod) Deactivate() {
	m.IsActive = false
	m.IsDefault = false
	m.UpdatedAt = time.Now().UTC()
}

// AttachCardDetails records the processor's token plus display metadata.
func (m *PaymentMethod) AttachCardDetails(processorMethodID, lastFour, brand string) {
	if processorMethodID != "" {
		m.ProcessorMethodID = &processorMethodID
	}
	if lastFour != "" {
		m.LastFourDigits = &lastFour
	}
	if brand != "" {
		m.Brand = &brand
	}
	m.UpdatedAt = time.Now().UTC()
}

func (m *PaymentMethod) AttachBankDetails(processorMethodID, lastFour, bankName string) {
	if processorMethodID != "" {
		m.ProcessorMethodID = &processorMethodID
	}
	if lastFour != "" {
		m.LastFourDigits = &lastFour
	}
	if bankName != "" {
		m.BankName = &bankName
	}
	m.UpdatedAt = time.Now().UTC()
}

// ReconstitutePaymentMethod is the constructor used when loading from the
// database.
func ReconstitutePaymentMethod(
	id, userID string,
	methodType MethodType,
	processorMethodID, lastFour, brand, bankName *string,
	isDefault, isActive bool,
	createdAt, updatedAt time.Time,
) *PaymentMethod {
	return &PaymentMethod{
		ID:                id,
		UserID:            userID,
		Type:              methodType,
		ProcessorMethodID: processorMethodID,
		LastFourDigits:    lastFour,
		Brand:             brand,
		BankName:          bankName,
		IsDefault:         isDefault,
		IsActive:          isActive,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
}
