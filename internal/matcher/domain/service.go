package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	invoicedomain "github.com/contentry/ledger/internal/invoice/domain"
)

type Service interface {
	// Match applies a captured payment to an invoice. Safe to call more
	// than once with the same pair; replays leave the invoice unchanged.
	Match(ctx context.Context, invoiceID snowflake.ID, paymentID snowflake.ID) (*invoicedomain.Invoice, error)
}
