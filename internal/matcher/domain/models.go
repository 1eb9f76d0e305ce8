// Package domain contains the payment-application ledger that correlates
// payments with invoices. Invoice and Payment are independent aggregates;
// this is the seam where they meet.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/contentry/ledger/internal/money"
)

var (
	ErrPaymentNotMatchable = errors.New("payment_not_matchable")
)

// PaymentApplication records one payment applied to one invoice. The unique
// (invoice_id, payment_id) pair makes matching idempotent under at-least-once
// delivery: a webhook replay inserts nothing and counts nothing.
type PaymentApplication struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	InvoiceID snowflake.ID   `gorm:"not null;uniqueIndex:ux_payment_applications_pair,priority:1"`
	PaymentID snowflake.ID   `gorm:"not null;uniqueIndex:ux_payment_applications_pair,priority:2"`
	Amount    int64          `gorm:"not null"`
	Currency  money.Currency `gorm:"type:text;not null"`
	AppliedAt time.Time      `gorm:"not null"`
}

// TableName sets the database table name.
func (PaymentApplication) TableName() string { return "payment_applications" }
