package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/contentry/ledger/internal/settlement/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateBatch(ctx context.Context, db *gorm.DB, batch *domain.SettlementBatch) error {
	return db.WithContext(ctx).Create(batch).Error
}

func (r *repo) FindBatchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SettlementBatch, error) {
	var item domain.SettlementBatch
	err := db.WithContext(ctx).
		Preload("Transfers").
		First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindTransferByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transfer, error) {
	var item domain.Transfer
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransferNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindTransferByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transfer, error) {
	query := db.WithContext(ctx)
	// sqlite serializes writers on its own and rejects FOR UPDATE
	if db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item domain.Transfer
	err := query.First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransferNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ClaimTransfer bumps the version ahead of the gateway call. Of two racers
// holding the same loaded version only one claim lands; the loser gets
// ErrStaleTransfer before any payout is placed.
func (r *repo) ClaimTransfer(ctx context.Context, db *gorm.DB, transfer *domain.Transfer) error {
	current := transfer.Version
	res := db.WithContext(ctx).Exec(
		`UPDATE transfers SET version = ? WHERE id = ? AND version = ?`,
		current+1,
		transfer.ID,
		current,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleTransfer
	}
	transfer.Version = current + 1
	return nil
}

func (r *repo) FindPendingTransfers(ctx context.Context, db *gorm.DB, limit int) ([]domain.Transfer, error) {
	var items []domain.Transfer
	query := db.WithContext(ctx).
		Where("status IN ?", []domain.TransferStatus{domain.TransferStatusPending, domain.TransferStatusFailed}).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SaveTransfer compares-and-swaps on the version column; a lost race
// surfaces as ErrStaleTransfer so the caller reloads instead of clobbering
// a concurrent execution's result.
func (r *repo) SaveTransfer(ctx context.Context, db *gorm.DB, transfer *domain.Transfer) error {
	current := transfer.Version
	res := db.WithContext(ctx).Exec(
		`UPDATE transfers
		 SET status = ?, external_transfer_id = ?, sent_at = ?, failed_at = ?,
			 failure_reason = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		transfer.Status,
		transfer.ExternalTransferID,
		transfer.SentAt,
		transfer.FailedAt,
		transfer.FailureReason,
		current+1,
		transfer.UpdatedAt,
		transfer.ID,
		current,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleTransfer
	}
	transfer.Version = current + 1
	return nil
}
