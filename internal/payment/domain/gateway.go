package domain

import (
	"context"

	"github.com/contentry/ledger/internal/money"
)

// Gateway is the external charge processor. An error means the charge or
// refund was not placed; success means it is considered placed. Failures
// propagate to the caller unmodified, retries are the caller's concern.
type Gateway interface {
	Authorize(ctx context.Context, payment *Payment) error
	Refund(ctx context.Context, payment *Payment, amount money.Money, reason string) error
}
