package domain

import (
	"math"

	"github.com/contentry/ledger/internal/money"
)

// Discount reduces an invoice subtotal. Implementations never return more
// than the base they are applied to.
type Discount interface {
	AmountFor(base money.Money) (money.Money, error)
}

// FixedDiscount takes a flat amount off the subtotal, capped at the subtotal.
type FixedDiscount struct {
	Amount money.Money
}

func (d FixedDiscount) AmountFor(base money.Money) (money.Money, error) {
	if d.Amount.Currency != base.Currency {
		return money.Money{}, money.ErrCurrencyMismatch
	}
	if d.Amount.Amount > base.Amount {
		return base, nil
	}
	return d.Amount, nil
}

// PercentageDiscount takes a fraction of the subtotal (0.1 for 10%).
type PercentageDiscount struct {
	Rate float64
}

func (d PercentageDiscount) AmountFor(base money.Money) (money.Money, error) {
	if d.Rate < 0 || d.Rate > 1 {
		return money.Money{}, ErrInvalidDiscount
	}
	amount := int64(math.Round(float64(base.Amount) * d.Rate))
	if amount > base.Amount {
		amount = base.Amount
	}
	return money.Money{Amount: amount, Currency: base.Currency}, nil
}
