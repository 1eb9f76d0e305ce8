package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/contentry/ledger/internal/payment/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Save compares-and-swaps on the version column so two concurrent
// load-mutate-save sequences cannot both win; the loser gets
// ErrStalePayment and must reload.
func (r *repo) Save(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	current := payment.Version
	res := db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET status = ?, external_payment_id = ?, refunded_amount = ?, refund_reason = ?,
			 authorized_at = ?, captured_at = ?, refunded_at = ?, failed_at = ?,
			 failure_reason = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		payment.Status,
		payment.ExternalPaymentID,
		payment.RefundedAmount,
		payment.RefundReason,
		payment.AuthorizedAt,
		payment.CapturedAt,
		payment.RefundedAt,
		payment.FailedAt,
		payment.FailureReason,
		current+1,
		payment.UpdatedAt,
		payment.ID,
		current,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStalePayment
	}
	payment.Version = current + 1
	return nil
}
