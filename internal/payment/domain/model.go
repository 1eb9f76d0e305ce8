// Package domain contains the payment aggregate. Payments are an audit
// trail: they are never deleted, and state transitions are the only
// mutations.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/contentry/ledger/internal/money"
)

// PaymentStatus represents payment lifecycle states.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusAuthorized        PaymentStatus = "AUTHORIZED"
	PaymentStatusCaptured          PaymentStatus = "CAPTURED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
)

// MethodType enumerates accepted payment instruments.
type MethodType string

const (
	MethodTypeCard         MethodType = "CARD"
	MethodTypeBankTransfer MethodType = "BANK_TRANSFER"
	MethodTypeWallet       MethodType = "WALLET"
)

// PaymentMethod describes the instrument a payment was placed with.
type PaymentMethod struct {
	Type      MethodType `gorm:"column:type;type:text;not null"`
	Label     string     `gorm:"column:label;type:text;not null"`
	Recurring bool       `gorm:"column:recurring;not null;default:false"`
}

func (m PaymentMethod) Validate() error {
	switch m.Type {
	case MethodTypeCard, MethodTypeBankTransfer, MethodTypeWallet:
	default:
		return ErrInvalidPaymentMethod
	}
	if strings.TrimSpace(m.Label) == "" {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// Payment is the buyer-side charge for an order.
type Payment struct {
	ID             snowflake.ID  `gorm:"primaryKey"`
	OrderID        snowflake.ID  `gorm:"not null;index"`
	BuyerAccountID snowflake.ID  `gorm:"not null;index"`
	Money          money.Money   `gorm:"embedded"`
	Method         PaymentMethod `gorm:"embedded;embeddedPrefix:method_"`
	Status         PaymentStatus `gorm:"type:text;not null;default:'PENDING'"`
	// ExternalPaymentID is the gateway-side charge identifier, recorded by
	// the gateway adapter during authorize and required for refunds.
	ExternalPaymentID *string    `gorm:"type:text"`
	RefundedAmount    int64      `gorm:"not null;default:0"`
	RefundReason      string     `gorm:"type:text"`
	AuthorizedAt      *time.Time `gorm:""`
	CapturedAt        *time.Time `gorm:""`
	RefundedAt        *time.Time `gorm:""`
	FailedAt          *time.Time `gorm:""`
	FailureReason     string     `gorm:"type:text"`
	Version           int64      `gorm:"not null;default:0"`
	CreatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// NewPayment builds a PENDING payment for an order.
func NewPayment(id snowflake.ID, orderID snowflake.ID, buyerAccountID snowflake.ID, amount money.Money, method PaymentMethod, now time.Time) (*Payment, error) {
	if err := method.Validate(); err != nil {
		return nil, err
	}
	if amount.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	created := now.UTC()
	return &Payment{
		ID:             id,
		OrderID:        orderID,
		BuyerAccountID: buyerAccountID,
		Money:          amount,
		Method:         method,
		Status:         PaymentStatusPending,
		CreatedAt:      created,
		UpdatedAt:      created,
	}, nil
}

// RecordExternalPaymentID stores the gateway-side charge identifier.
func (p *Payment) RecordExternalPaymentID(externalID string) {
	p.ExternalPaymentID = &externalID
}

// RefundedMoney is the cumulative refunded amount in the payment's currency.
func (p *Payment) RefundedMoney() money.Money {
	return money.Money{Amount: p.RefundedAmount, Currency: p.Money.Currency}
}

// RemainingMoney is the portion of the payment not yet refunded.
func (p *Payment) RemainingMoney() money.Money {
	return money.Money{Amount: p.Money.Amount - p.RefundedAmount, Currency: p.Money.Currency}
}

// Authorize transitions PENDING -> AUTHORIZED.
func (p *Payment) Authorize(now time.Time) error {
	if p.Status != PaymentStatusPending {
		return ErrInvalidStateTransition
	}
	at := now.UTC()
	p.Status = PaymentStatusAuthorized
	p.AuthorizedAt = &at
	p.UpdatedAt = at
	return nil
}

// Capture transitions AUTHORIZED -> CAPTURED.
func (p *Payment) Capture(now time.Time) error {
	if p.Status != PaymentStatusAuthorized {
		return ErrInvalidStateTransition
	}
	at := now.UTC()
	p.Status = PaymentStatusCaptured
	p.CapturedAt = &at
	p.UpdatedAt = at
	return nil
}

func (p *Payment) refundable() bool {
	switch p.Status {
	case PaymentStatusAuthorized, PaymentStatusCaptured, PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

// ValidateRefund checks the refund invariants without mutating the payment.
// Services call it before placing the gateway refund so invalid requests
// never reach the gateway.
func (p *Payment) ValidateRefund(amount money.Money) error {
	if !p.refundable() {
		return ErrInvalidStateTransition
	}
	if amount.Currency != p.Money.Currency {
		return money.ErrCurrencyMismatch
	}
	if amount.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.RefundedAmount+amount.Amount > p.Money.Amount {
		return ErrRefundExceedsPayment
	}
	return nil
}

// Refund accumulates a refund. The cumulative refunded amount never exceeds
// the original payment; the refund that exactly exhausts the balance yields
// REFUNDED, earlier partial refunds PARTIALLY_REFUNDED.
func (p *Payment) Refund(amount money.Money, now time.Time, reason string) error {
	if err := p.ValidateRefund(amount); err != nil {
		return err
	}
	at := now.UTC()
	p.RefundedAmount += amount.Amount
	if p.RefundedAmount == p.Money.Amount {
		p.Status = PaymentStatusRefunded
	} else {
		p.Status = PaymentStatusPartiallyRefunded
	}
	p.RefundedAt = &at
	p.RefundReason = reason
	p.UpdatedAt = at
	return nil
}

// MarkFailed records a terminal gateway decline. Refunded payments cannot
// fail.
func (p *Payment) MarkFailed(reason string, now time.Time) error {
	switch p.Status {
	case PaymentStatusPending, PaymentStatusAuthorized, PaymentStatusCaptured:
	default:
		return ErrInvalidStateTransition
	}
	at := now.UTC()
	p.Status = PaymentStatusFailed
	p.FailedAt = &at
	p.FailureReason = reason
	p.UpdatedAt = at
	return nil
}
