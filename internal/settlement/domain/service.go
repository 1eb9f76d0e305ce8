package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/contentry/ledger/internal/money"
)

type CreateBatchRequest struct {
	AccountID   snowflake.ID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Payouts     []money.Money
}

// ProcessResult summarizes one batch re-drive pass.
type ProcessResult struct {
	Processed int
	Sent      int
	Failed    int
}

type Service interface {
	CreateBatch(ctx context.Context, req CreateBatchRequest) (*SettlementBatch, error)
	GetBatchByID(ctx context.Context, id snowflake.ID) (*SettlementBatch, error)
	GetTransferByID(ctx context.Context, id snowflake.ID) (*Transfer, error)
	// ExecuteTransfer attempts the payout. Gateway and payout-eligibility
	// failures end as Transfer FAILED state, not as returned errors; only
	// NotFound and infrastructure errors propagate.
	ExecuteTransfer(ctx context.Context, id snowflake.ID) (*Transfer, error)
	// ProcessPending re-drives all PENDING and FAILED transfers. A single
	// transfer's failure never aborts the pass.
	ProcessPending(ctx context.Context) (ProcessResult, error)
}
