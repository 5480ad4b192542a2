// Package money provides an integer-cents money value shared by the catalog,
// cart, and orders bounded contexts.
package money

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeAmount   = errors.New("money amount must not be negative")
	ErrEmptyCurrency    = errors.New("money currency must not be empty")
	ErrCurrencyMismatch = errors.New("money currency mismatch")
)

// Money is an amount in the smallest currency unit (cents for USD).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New builds a validated Money value.
func New(amount int64, currency string) (Money, error) {
	m := Money{Amount: amount, Currency: currency}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

// Validate enforces the value invariants.
func (m Money) Validate() error {
	if m.Amount < 0 {
		return ErrNegativeAmount
	}
	if m.Currency == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// IsZero reports whether the value carries no amount and no currency.
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}

// Add returns the sum of both values; the currencies must match.
// Adding to a zero value adopts the other operand's currency.
func (m Money) Add(other Money) (Money, error) {
	if m.IsZero() {
		return other, nil
	}
	if other.IsZero() {
		return m, nil
	}
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// MulQuantity scales the amount by a line-item quantity.
func (m Money) MulQuantity(qty int32) Money {
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}
}

// Equal reports value equality.
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

// String renders the value as e.g. "15.99 USD".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}
