package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/contentry/ledger/internal/money"
)

type AuthorizeRequest struct {
	OrderID        snowflake.ID
	BuyerAccountID snowflake.ID
	Amount         money.Money
	Method         PaymentMethod
}

type Service interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*Payment, error)
	Capture(ctx context.Context, id snowflake.ID) (*Payment, error)
	Refund(ctx context.Context, id snowflake.ID, amount money.Money, reason string) (*Payment, error)
	Fail(ctx context.Context, id snowflake.ID, reason string) (*Payment, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Payment, error)
}
