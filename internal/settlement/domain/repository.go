package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateBatch(ctx context.Context, db *gorm.DB, batch *SettlementBatch) error
	FindBatchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SettlementBatch, error)
	FindTransferByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transfer, error)
	// FindTransferByIDForUpdate loads the transfer under a row lock where the
	// dialect supports one, so an execution decision reads committed state.
	FindTransferByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transfer, error)
	// ClaimTransfer advances the version of a still-executable transfer before
	// any payout is placed. A concurrent executor of the same transfer fails
	// its claim with ErrStaleTransfer instead of reaching the gateway.
	ClaimTransfer(ctx context.Context, db *gorm.DB, transfer *Transfer) error
	// FindPendingTransfers returns PENDING and FAILED transfers for batch
	// re-drive, oldest first.
	FindPendingTransfers(ctx context.Context, db *gorm.DB, limit int) ([]Transfer, error)
	// SaveTransfer persists a mutated transfer with an optimistic version
	// check and returns ErrStaleTransfer when the row changed underneath.
	SaveTransfer(ctx context.Context, db *gorm.DB, transfer *Transfer) error
}
