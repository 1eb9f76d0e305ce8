package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/contentry/ledger/internal/money"
)

func issuedInvoice(total int64) *Invoice {
	return &Invoice{
		Status:      InvoiceStatusIssued,
		Currency:    money.KRW,
		TotalAmount: total,
	}
}

func TestInvoice_ApplyPayment_PartialThenPaid(t *testing.T) {
	invoice := issuedInvoice(2200)
	now := time.Now().UTC()

	err := invoice.ApplyPayment(money.Money{Amount: 1000, Currency: money.KRW}, now)
	assert.NoError(t, err)
	assert.Equal(t, InvoiceStatusIssued, invoice.Status)
	assert.Equal(t, int64(1000), invoice.AmountApplied)

	err = invoice.ApplyPayment(money.Money{Amount: 1200, Currency: money.KRW}, now)
	assert.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	assert.NotNil(t, invoice.PaidAt)
}

func TestInvoice_ApplyPayment_CurrencyMismatch(t *testing.T) {
	invoice := issuedInvoice(1000)
	err := invoice.ApplyPayment(money.Money{Amount: 1000, Currency: money.USD}, time.Now())
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
	assert.Equal(t, int64(0), invoice.AmountApplied)
}

func TestInvoice_ApplyPayment_VoidedInvoice(t *testing.T) {
	invoice := issuedInvoice(1000)
	assert.NoError(t, invoice.Void(time.Now()))

	err := invoice.ApplyPayment(money.Money{Amount: 1000, Currency: money.KRW}, time.Now())
	assert.ErrorIs(t, err, ErrInvoiceVoided)
}

func TestInvoice_Void_Transitions(t *testing.T) {
	invoice := issuedInvoice(1000)
	assert.NoError(t, invoice.Void(time.Now()))
	assert.Equal(t, InvoiceStatusVoid, invoice.Status)
	assert.NotNil(t, invoice.VoidedAt)

	assert.ErrorIs(t, invoice.Void(time.Now()), ErrInvoiceVoided)

	paid := issuedInvoice(100)
	assert.NoError(t, paid.ApplyPayment(money.Money{Amount: 100, Currency: money.KRW}, time.Now()))
	assert.ErrorIs(t, paid.Void(time.Now()), ErrInvoiceAlreadyPaid)
}
