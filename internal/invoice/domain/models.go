// Package domain contains the invoice aggregate and the value objects used
// to compute it.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"

	"github.com/contentry/ledger/internal/money"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	InvoiceStatusPaid   InvoiceStatus = "PAID"
	InvoiceStatusVoid   InvoiceStatus = "VOID"
)

// Invoice is issued once at order checkout. The line list is immutable after
// issuance; only payment matching mutates status and the paid amount.
type Invoice struct {
	ID             snowflake.ID      `gorm:"primaryKey"`
	OrderID        snowflake.ID      `gorm:"not null;uniqueIndex:ux_invoices_order"`
	BuyerAccountID snowflake.ID      `gorm:"not null;index"`
	Status         InvoiceStatus     `gorm:"type:text;not null;default:'ISSUED'"`
	Currency       money.Currency    `gorm:"type:text;not null"`
	SubtotalAmount int64             `gorm:"not null;default:0"`
	DiscountAmount int64             `gorm:"not null;default:0"`
	TaxAmount      int64             `gorm:"not null;default:0"`
	TotalAmount    int64             `gorm:"not null;default:0"`
	AmountApplied  int64             `gorm:"not null;default:0"`
	IssuedAt       time.Time         `gorm:"not null"`
	DueDate        time.Time         `gorm:"not null"`
	PaidAt         *time.Time        `gorm:""`
	VoidedAt       *time.Time        `gorm:""`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

func (i *Invoice) Subtotal() money.Money {
	return money.Money{Amount: i.SubtotalAmount, Currency: i.Currency}
}

func (i *Invoice) Discount() money.Money {
	return money.Money{Amount: i.DiscountAmount, Currency: i.Currency}
}

func (i *Invoice) Tax() money.Money {
	return money.Money{Amount: i.TaxAmount, Currency: i.Currency}
}

func (i *Invoice) Total() money.Money {
	return money.Money{Amount: i.TotalAmount, Currency: i.Currency}
}

// ApplyPayment accumulates a matched payment amount and flips the invoice to
// PAID once the applied total covers the invoice total. AmountApplied is
// monotonic; it never decreases.
func (i *Invoice) ApplyPayment(amount money.Money, now time.Time) error {
	if i.Status == InvoiceStatusVoid {
		return ErrInvoiceVoided
	}
	if amount.Currency != i.Currency {
		return money.ErrCurrencyMismatch
	}
	i.AmountApplied += amount.Amount
	if i.Status != InvoiceStatusPaid && i.AmountApplied >= i.TotalAmount {
		i.Status = InvoiceStatusPaid
		paidAt := now.UTC()
		i.PaidAt = &paidAt
	}
	i.UpdatedAt = now.UTC()
	return nil
}

// Void cancels an issued invoice. Paid invoices cannot be voided.
func (i *Invoice) Void(now time.Time) error {
	switch i.Status {
	case InvoiceStatusPaid:
		return ErrInvoiceAlreadyPaid
	case InvoiceStatusVoid:
		return ErrInvoiceVoided
	}
	i.Status = InvoiceStatusVoid
	voidedAt := now.UTC()
	i.VoidedAt = &voidedAt
	i.UpdatedAt = now.UTC()
	return nil
}

// InvoiceLine is a priced line on an invoice.
type InvoiceLine struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	InvoiceID   snowflake.ID `gorm:"not null;index"`
	Description string       `gorm:"type:text;not null"`
	Quantity    int64        `gorm:"not null"`
	UnitPrice   money.Money  `gorm:"embedded;embeddedPrefix:unit_price_"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }

// LineTotal is unit price times quantity.
func (l InvoiceLine) LineTotal() (money.Money, error) {
	return l.UnitPrice.MultiplyQuantity(l.Quantity)
}
