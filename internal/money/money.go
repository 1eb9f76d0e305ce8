// Package money provides the minor-unit monetary value object used across
// the ledger. All arithmetic is currency-checked and never produces a
// negative amount.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Currency is an ISO 4217 code supported by the platform.
type Currency string

const (
	KRW Currency = "KRW"
	USD Currency = "USD"
	EUR Currency = "EUR"
	JPY Currency = "JPY"
	GBP Currency = "GBP"
)

var (
	ErrCurrencyMismatch = errors.New("currency_mismatch")
	ErrInvalidCurrency  = errors.New("invalid_currency")
	ErrNegativeAmount   = errors.New("negative_amount")
	ErrAmountOverflow   = errors.New("amount_overflow")
)

var supported = map[Currency]struct{}{
	KRW: {},
	USD: {},
	EUR: {},
	JPY: {},
	GBP: {},
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	currency := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := supported[currency]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return currency, nil
}

// Money is an immutable (amount, currency) pair. Amount is in the currency's
// minor unit and is never negative; refunds and discounts are modelled as
// explicit operations, not negative values.
type Money struct {
	Amount   int64    `gorm:"column:amount;not null" json:"amount"`
	Currency Currency `gorm:"column:currency;type:text;not null" json:"currency"`
}

// New builds a Money value. Negative amounts and unknown currencies are
// rejected.
func New(amount int64, currency Currency) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	if _, ok := supported[currency]; !ok {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Zero returns the zero amount of a currency.
func Zero(currency Currency) Money {
	return Money{Amount: 0, Currency: currency}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return nil
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Subtract returns m minus other. Results below zero are rejected rather
// than represented as negative Money.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.Amount > m.Amount {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// MultiplyQuantity scales m by a non-negative line quantity. Products that
// do not fit in an int64 are rejected instead of wrapping around.
func (m Money) MultiplyQuantity(quantity int64) (Money, error) {
	if quantity < 0 {
		return Money{}, ErrNegativeAmount
	}
	if quantity != 0 && m.Amount > math.MaxInt64/quantity {
		return Money{}, ErrAmountOverflow
	}
	return Money{Amount: m.Amount * quantity, Currency: m.Currency}, nil
}

// Compare returns -1, 0 or 1. It fails on currency mismatch like the other
// binary operations.
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.Amount < other.Amount:
		return -1, nil
	case m.Amount > other.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount == other.Amount
}

func (m Money) LessThan(other Money) (bool, error) {
	cmp, err := m.Compare(other)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
