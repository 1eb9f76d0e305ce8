// Package domain contains settlement batches and the transfers that pay
// sellers out. Transfer failures are durable state, not exceptions: a FAILED
// transfer is queryable and retryable by re-invoking execution.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/contentry/ledger/internal/money"
)

// TransferStatus represents transfer lifecycle states. FAILED is retryable;
// SENT is terminal.
type TransferStatus string

const (
	TransferStatusPending TransferStatus = "PENDING"
	TransferStatusSent    TransferStatus = "SENT"
	TransferStatusFailed  TransferStatus = "FAILED"
)

// SettlementBatch groups the payouts owed to one monetization account over
// a period.
type SettlementBatch struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	AccountID   snowflake.ID `gorm:"not null;index"`
	PeriodStart time.Time    `gorm:"not null"`
	PeriodEnd   time.Time    `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Transfers []Transfer `gorm:"foreignKey:BatchID"`
}

// TableName sets the database table name.
func (SettlementBatch) TableName() string { return "settlement_batches" }

// Transfer is a single payout to a monetization account's connected account.
type Transfer struct {
	ID                 snowflake.ID   `gorm:"primaryKey"`
	BatchID            snowflake.ID   `gorm:"not null;index"`
	AccountID          snowflake.ID   `gorm:"not null;index"`
	Amount             money.Money    `gorm:"embedded"`
	Status             TransferStatus `gorm:"type:text;not null;default:'PENDING';index"`
	ExternalTransferID *string        `gorm:"type:text"`
	SentAt             *time.Time     `gorm:""`
	FailedAt           *time.Time     `gorm:""`
	FailureReason      string         `gorm:"type:text"`
	Version            int64          `gorm:"not null;default:0"`
	CreatedAt          time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Transfer) TableName() string { return "transfers" }

// Executable reports whether execution may be attempted: PENDING transfers
// and FAILED ones being retried.
func (t *Transfer) Executable() bool {
	return t.Status == TransferStatusPending || t.Status == TransferStatusFailed
}

// RecordExternalTransferID stores the gateway-side transfer identifier
// returned by a successful execution.
func (t *Transfer) RecordExternalTransferID(externalID string) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return ErrInvalidExternalTransferID
	}
	t.ExternalTransferID = &externalID
	return nil
}

// MarkSent transitions to SENT. The external transfer id must be recorded
// first.
func (t *Transfer) MarkSent(now time.Time) error {
	if !t.Executable() {
		return ErrInvalidStateTransition
	}
	if t.ExternalTransferID == nil {
		return ErrInvalidExternalTransferID
	}
	at := now.UTC()
	t.Status = TransferStatusSent
	t.SentAt = &at
	t.FailedAt = nil
	t.FailureReason = ""
	t.UpdatedAt = at
	return nil
}

// MarkFailed records a failed execution attempt as durable state.
func (t *Transfer) MarkFailed(reason string, now time.Time) error {
	if !t.Executable() {
		return ErrInvalidStateTransition
	}
	at := now.UTC()
	t.Status = TransferStatusFailed
	t.FailedAt = &at
	t.FailureReason = reason
	t.UpdatedAt = at
	return nil
}
