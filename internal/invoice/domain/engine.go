package domain

import (
	"github.com/contentry/ledger/internal/money"
)

// Totals is the deterministic money arithmetic over an invoice's lines.
// TaxAmount reports all tax (inclusive and exclusive); only exclusive tax
// contributes to Total.
type Totals struct {
	Subtotal money.Money
	Discount money.Money
	Tax      money.Money
	Total    money.Money
}

// ComputeTotals evaluates subtotal, discount, tax and total for the given
// lines. Pure computation, no I/O.
func ComputeTotals(lines []InvoiceLine, currency money.Currency, discount Discount, taxLines []TaxLine) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrNoLines
	}

	subtotal := money.Zero(currency)
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Totals{}, ErrInvalidQuantity
		}
		if line.UnitPrice.Currency != currency {
			return Totals{}, money.ErrCurrencyMismatch
		}
		lineTotal, err := line.LineTotal()
		if err != nil {
			return Totals{}, err
		}
		subtotal, err = subtotal.Add(lineTotal)
		if err != nil {
			return Totals{}, err
		}
	}

	discountAmount := money.Zero(currency)
	if discount != nil {
		var err error
		discountAmount, err = discount.AmountFor(subtotal)
		if err != nil {
			return Totals{}, err
		}
	}

	net, err := subtotal.Subtract(discountAmount)
	if err != nil {
		return Totals{}, err
	}

	taxTotal := money.Zero(currency)
	total := net
	for _, taxLine := range taxLines {
		taxAmount, err := taxLine.TaxAmountFor(net)
		if err != nil {
			return Totals{}, err
		}
		taxTotal, err = taxTotal.Add(taxAmount)
		if err != nil {
			return Totals{}, err
		}
		if taxLine.Mode == TaxModeExclusive {
			total, err = total.Add(taxAmount)
			if err != nil {
				return Totals{}, err
			}
		}
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discountAmount,
		Tax:      taxTotal,
		Total:    total,
	}, nil
}
