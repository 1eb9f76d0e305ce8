package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	invoicedomain "github.com/contentry/ledger/internal/invoice/domain"
	matcherdomain "github.com/contentry/ledger/internal/matcher/domain"
	matcherrepo "github.com/contentry/ledger/internal/matcher/repository"
	obsmetrics "github.com/contentry/ledger/internal/observability/metrics"
	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        matcherrepo.Repository
	InvoiceRepo invoicedomain.Repository
	PaymentRepo paymentdomain.Repository
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        matcherrepo.Repository
	invoiceRepo invoicedomain.Repository
	paymentRepo paymentdomain.Repository
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) matcherdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("matcher.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		paymentRepo: p.PaymentRepo,
		obsMetrics:  p.ObsMetrics,
	}
}

// Match reconciles a captured payment against an invoice inside one
// row-locked transaction. The application ledger row carries the idempotency:
// a pair that was already applied inserts nothing and the invoice is returned
// as is.
func (s *Service) Match(ctx context.Context, invoiceID snowflake.ID, paymentID snowflake.ID) (*invoicedomain.Invoice, error) {
	var matched *invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		payment, err := s.paymentRepo.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != paymentdomain.PaymentStatusCaptured {
			return matcherdomain.ErrPaymentNotMatchable
		}

		now := time.Now().UTC()
		inserted, err := s.repo.InsertApplication(ctx, tx, &matcherdomain.PaymentApplication{
			ID:        s.genID.Generate(),
			InvoiceID: invoice.ID,
			PaymentID: payment.ID,
			Amount:    payment.Money.Amount,
			Currency:  payment.Money.Currency,
			AppliedAt: now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			// replay: already applied, nothing to count
			matched = invoice
			return nil
		}

		if err := invoice.ApplyPayment(payment.Money, now); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, tx, invoice); err != nil {
			return err
		}
		matched = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentMatched(ctx, string(matched.Status))
	}
	s.log.Info("payment matched",
		zap.String("invoice_id", matched.ID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.Int64("amount_applied", matched.AmountApplied),
		zap.String("status", string(matched.Status)),
	)
	return matched, nil
}
