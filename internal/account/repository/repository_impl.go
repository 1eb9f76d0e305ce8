package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/contentry/ledger/internal/account/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, account *domain.MonetizationAccount) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MonetizationAccount, error) {
	var item domain.MonetizationAccount
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByOwner(ctx context.Context, db *gorm.DB, ownerAccountID snowflake.ID) (*domain.MonetizationAccount, error) {
	var item domain.MonetizationAccount
	err := db.WithContext(ctx).First(&item, "owner_account_id = ?", ownerAccountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, account *domain.MonetizationAccount) error {
	return db.WithContext(ctx).Save(account).Error
}
