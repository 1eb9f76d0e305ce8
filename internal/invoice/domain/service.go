package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/contentry/ledger/internal/money"
)

// NewLine is a line item supplied at invoice creation.
type NewLine struct {
	Description string
	Quantity    int64
	UnitPrice   money.Money
}

type CreateInvoiceRequest struct {
	OrderID        snowflake.ID
	BuyerAccountID snowflake.ID
	Currency       money.Currency
	Lines          []NewLine
	Discount       Discount
	TaxLines       []TaxLine
	IssuedAt       time.Time
	DueDate        time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
	Void(ctx context.Context, id snowflake.ID) (*Invoice, error)
}
