package domain

import (
	"context"

	accountdomain "github.com/contentry/ledger/internal/account/domain"
)

// Gateway executes payouts against the external processor. It returns the
// external transfer identifier on success and a *GatewayError on processor
// failure.
type Gateway interface {
	Execute(ctx context.Context, transfer *Transfer, account *accountdomain.MonetizationAccount) (string, error)
}
