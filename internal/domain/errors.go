package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain validation errors
const (
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency      = "INVALID_CURRENCY"
	ErrCodeCurrencyMismatch     = "CURRENCY_MISMATCH"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeMissingDependency    = "MISSING_DEPENDENCY"
	ErrCodePaymentNotFound      = "PAYMENT_NOT_FOUND"
	ErrCodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeMethodNotFound       = "PAYMENT_METHOD_NOT_FOUND"
)

func NewInvalidTransitionError(from, to string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewInvalidAmountError(amount string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %s", amount),
	}
}

func NewInvalidCurrencyError(currency string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCurrency,
		Message: fmt.Sprintf("invalid currency code %q", currency),
	}
}

func NewCurrencyMismatchError(a, b string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCurrencyMismatch,
		Message: fmt.Sprintf("currency mismatch: %s vs %s", a, b),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewMissingDependencyError(dependency string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingDependency,
		Message: fmt.Sprintf("payment missing required dependency: %s", dependency),
	}
}

func NewPaymentNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotFound,
		Message: fmt.Sprintf("payment with ID %s not found", id),
	}
}

func NewSubscriptionNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeSubscriptionNotFound,
		Message: fmt.Sprintf("subscription with ID %s not found", id),
	}
}

func NewMethodNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("payment method with ID %s not found", id),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
