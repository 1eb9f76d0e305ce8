// Package domain contains the monetization account: the capability and
// onboarding-status holder consulted before any payout.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Capability gates what an account may do on the platform.
type Capability string

const (
	CapabilityPurchase      Capability = "PURCHASE"
	CapabilitySell          Capability = "SELL"
	CapabilityReceivePayout Capability = "RECEIVE_PAYOUT"
)

func ParseCapability(value string) (Capability, error) {
	capability := Capability(strings.ToUpper(strings.TrimSpace(value)))
	switch capability {
	case CapabilityPurchase, CapabilitySell, CapabilityReceivePayout:
		return capability, nil
	}
	return "", ErrInvalidCapability
}

// ConnectedAccountStatus is the gateway onboarding state of the seller-side
// connected account. Only ENABLED accounts can receive payouts.
type ConnectedAccountStatus string

const (
	ConnectedAccountStatusPending    ConnectedAccountStatus = "PENDING"
	ConnectedAccountStatusRestricted ConnectedAccountStatus = "RESTRICTED"
	ConnectedAccountStatusEnabled    ConnectedAccountStatus = "ENABLED"
)

func (s ConnectedAccountStatus) Valid() bool {
	switch s {
	case ConnectedAccountStatusPending, ConnectedAccountStatusRestricted, ConnectedAccountStatusEnabled:
		return true
	}
	return false
}

// MonetizationAccount is created on an account's first monetization need
// (one per platform account) and updated as gateway onboarding progresses.
type MonetizationAccount struct {
	ID                     snowflake.ID                    `gorm:"primaryKey"`
	OwnerAccountID         snowflake.ID                    `gorm:"not null;uniqueIndex:ux_monetization_accounts_owner"`
	Capabilities           datatypes.JSONSlice[Capability] `gorm:"not null"`
	ExternalCustomerID     *string                         `gorm:"type:text"`
	ConnectedAccountID     *string                         `gorm:"type:text"`
	ConnectedAccountStatus *ConnectedAccountStatus         `gorm:"type:text"`
	CreatedAt              time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MonetizationAccount) TableName() string { return "monetization_accounts" }

func (a *MonetizationAccount) HasCapability(capability Capability) bool {
	for _, held := range a.Capabilities {
		if held == capability {
			return true
		}
	}
	return false
}

// GrantCapability is idempotent.
func (a *MonetizationAccount) GrantCapability(capability Capability, now time.Time) {
	if a.HasCapability(capability) {
		return
	}
	a.Capabilities = append(a.Capabilities, capability)
	a.UpdatedAt = now.UTC()
}

// AttachConnectedAccount records the gateway-side connected account used for
// payouts. Onboarding starts PENDING.
func (a *MonetizationAccount) AttachConnectedAccount(externalID string, now time.Time) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return ErrInvalidConnectedAccount
	}
	status := ConnectedAccountStatusPending
	a.ConnectedAccountID = &externalID
	a.ConnectedAccountStatus = &status
	a.UpdatedAt = now.UTC()
	return nil
}

// UpdateConnectedAccountStatus tracks gateway onboarding progress.
func (a *MonetizationAccount) UpdateConnectedAccountStatus(status ConnectedAccountStatus, now time.Time) error {
	if a.ConnectedAccountID == nil {
		return ErrInvalidConnectedAccount
	}
	if !status.Valid() {
		return ErrInvalidConnectedStatus
	}
	a.ConnectedAccountStatus = &status
	a.UpdatedAt = now.UTC()
	return nil
}

// AssertCanReceivePayout fails unless the account holds RECEIVE_PAYOUT and
// its connected account is ENABLED.
func (a *MonetizationAccount) AssertCanReceivePayout() error {
	if !a.HasCapability(CapabilityReceivePayout) {
		return ErrPayoutNotAllowed
	}
	if a.ConnectedAccountID == nil || a.ConnectedAccountStatus == nil {
		return ErrPayoutNotAllowed
	}
	if *a.ConnectedAccountStatus != ConnectedAccountStatusEnabled {
		return ErrPayoutNotAllowed
	}
	return nil
}
