package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	invoicedomain "github.com/contentry/ledger/internal/invoice/domain"
	"github.com/contentry/ledger/internal/money"
	obsmetrics "github.com/contentry/ledger/internal/observability/metrics"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       invoicedomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       invoicedomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

// Create validates the request, computes totals and persists the invoice as
// ISSUED. Totals are fixed at issuance; the line list is immutable afterwards.
func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	if _, err := money.ParseCurrency(string(req.Currency)); err != nil {
		return nil, err
	}

	lines := make([]invoicedomain.InvoiceLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, invoicedomain.InvoiceLine{
			ID:          s.genID.Generate(),
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	totals, err := invoicedomain.ComputeTotals(lines, req.Currency, req.Discount, req.TaxLines)
	if err != nil {
		return nil, err
	}

	issuedAt := req.IssuedAt.UTC()
	invoice := &invoicedomain.Invoice{
		ID:             s.genID.Generate(),
		OrderID:        req.OrderID,
		BuyerAccountID: req.BuyerAccountID,
		Status:         invoicedomain.InvoiceStatusIssued,
		Currency:       req.Currency,
		SubtotalAmount: totals.Subtotal.Amount,
		DiscountAmount: totals.Discount.Amount,
		TaxAmount:      totals.Tax.Amount,
		TotalAmount:    totals.Total.Amount,
		IssuedAt:       issuedAt,
		DueDate:        req.DueDate.UTC(),
		CreatedAt:      issuedAt,
		UpdatedAt:      issuedAt,
	}
	for i := range lines {
		lines[i].InvoiceID = invoice.ID
	}
	invoice.Lines = lines

	if err := s.repo.Create(ctx, s.db, invoice); err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordInvoiceIssued(ctx, string(invoice.Currency))
	}
	s.log.Info("invoice issued",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("order_id", invoice.OrderID.String()),
		zap.Int64("total", invoice.TotalAmount),
		zap.String("currency", string(invoice.Currency)),
	)

	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

// Void cancels an issued invoice. Paid invoices are rejected by the entity.
func (s *Service) Void(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var voided *invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := invoice.Void(time.Now().UTC()); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, tx, invoice); err != nil {
			return err
		}
		voided = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice voided", zap.String("invoice_id", voided.ID.String()))
	return voided, nil
}
