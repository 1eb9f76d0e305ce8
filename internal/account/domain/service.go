package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// EnsureForOwner returns the owner's monetization account, creating it
	// on first monetization need.
	EnsureForOwner(ctx context.Context, ownerAccountID snowflake.ID, capabilities ...Capability) (*MonetizationAccount, error)
	GetByID(ctx context.Context, id snowflake.ID) (*MonetizationAccount, error)
	GrantCapability(ctx context.Context, id snowflake.ID, capability Capability) (*MonetizationAccount, error)
	AttachConnectedAccount(ctx context.Context, id snowflake.ID, externalID string) (*MonetizationAccount, error)
	UpdateConnectedAccountStatus(ctx context.Context, id snowflake.ID, status ConnectedAccountStatus) (*MonetizationAccount, error)
}
