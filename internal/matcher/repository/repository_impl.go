package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/contentry/ledger/internal/matcher/domain"
)

type Repository interface {
	// InsertApplication inserts the application row unless the
	// (invoice, payment) pair already exists. Returns whether a row was
	// inserted.
	InsertApplication(ctx context.Context, db *gorm.DB, application *domain.PaymentApplication) (bool, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) InsertApplication(ctx context.Context, db *gorm.DB, application *domain.PaymentApplication) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "invoice_id"}, {Name: "payment_id"}},
			DoNothing: true,
		}).
		Create(application)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
