package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a single currency. Arithmetic across
// currencies is not allowed and fails with a CURRENCY_MISMATCH error.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, NewInvalidAmountError(amount.String())
	}
	if len(currency) != 3 {
		return Money{}, NewInvalidCurrencyError(currency)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney panics on invalid input. Only for wiring defaults and tests.
func MustMoney(amount string, currency string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, NewCurrencyMismatchError(m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, NewCurrencyMismatchError(m.Currency, other.Currency)
	}
	result := m.Amount.Sub(other.Amount)
	if result.IsNegative() {
		return Money{}, NewInvalidAmountError(result.String())
	}
	return Money{Amount: result, Currency: m.Currency}, nil
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) LessThan(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, NewCurrencyMismatchError(m.Currency, other.Currency)
	}
	return m.Amount.LessThan(other.Amount), nil
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
