package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, account *MonetizationAccount) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MonetizationAccount, error)
	FindByOwner(ctx context.Context, db *gorm.DB, ownerAccountID snowflake.ID) (*MonetizationAccount, error)
	Save(ctx context.Context, db *gorm.DB, account *MonetizationAccount) error
}
