package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	// Save persists a mutated payment with an optimistic version check and
	// returns ErrStalePayment when another writer got there first.
	Save(ctx context.Context, db *gorm.DB, payment *Payment) error
}
