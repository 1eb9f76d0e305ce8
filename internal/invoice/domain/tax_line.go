package domain

import (
	"math"

	"github.com/contentry/ledger/internal/money"
)

// TaxMode represents how tax is applied to the invoice total.
type TaxMode string

const (
	TaxModeExclusive TaxMode = "exclusive" // added on top of the net amount
	TaxModeInclusive TaxMode = "inclusive" // already embedded in the net amount
)

// TaxLine applies a rate to the invoice net amount. Inclusive lines report
// the tax portion already contained in net; exclusive lines add to the total.
type TaxLine struct {
	Code string
	Rate float64 // fraction, e.g. 0.1 for 10%
	Mode TaxMode
}

func (t TaxLine) Validate() error {
	if t.Rate < 0 {
		return ErrInvalidTaxRate
	}
	if t.Mode != TaxModeExclusive && t.Mode != TaxModeInclusive {
		return ErrInvalidTaxMode
	}
	return nil
}

// TaxAmountFor computes the tax carried by net. For an inclusive line the
// result is the portion of net that is tax; for an exclusive line it is the
// amount to add on top.
func (t TaxLine) TaxAmountFor(net money.Money) (money.Money, error) {
	if err := t.Validate(); err != nil {
		return money.Money{}, err
	}
	var amount int64
	switch t.Mode {
	case TaxModeExclusive:
		amount = int64(math.Round(float64(net.Amount) * t.Rate))
	case TaxModeInclusive:
		amount = int64(math.Round(float64(net.Amount) * t.Rate / (1 + t.Rate)))
	}
	return money.Money{Amount: amount, Currency: net.Currency}, nil
}
