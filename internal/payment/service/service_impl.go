package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/contentry/ledger/internal/money"
	obsmetrics "github.com/contentry/ledger/internal/observability/metrics"
	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       paymentdomain.Repository
	Gateway    paymentdomain.Gateway
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       paymentdomain.Repository
	gateway    paymentdomain.Gateway
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		gateway:    p.Gateway,
		obsMetrics: p.ObsMetrics,
	}
}

// Authorize places a charge with the gateway and persists the payment as
// AUTHORIZED. The gateway call precedes any mutation: a gateway error leaves
// nothing persisted, so retrying authorize is always safe.
func (s *Service) Authorize(ctx context.Context, req paymentdomain.AuthorizeRequest) (*paymentdomain.Payment, error) {
	now := time.Now().UTC()
	payment, err := paymentdomain.NewPayment(s.genID.Generate(), req.OrderID, req.BuyerAccountID, req.Amount, req.Method, now)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.Authorize(ctx, payment); err != nil {
		s.log.Warn("gateway authorize failed",
			zap.String("order_id", req.OrderID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := payment.Authorize(now); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, s.db, payment); err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentOutcome(ctx, "authorized")
	}
	s.log.Info("payment authorized",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", payment.OrderID.String()),
		zap.Int64("amount", payment.Money.Amount),
		zap.String("currency", string(payment.Money.Currency)),
	)
	return payment, nil
}

// Capture confirms a previously authorized charge for settlement.
func (s *Service) Capture(ctx context.Context, id snowflake.ID) (*paymentdomain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := payment.Capture(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, s.db, payment); err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentOutcome(ctx, "captured")
	}
	s.log.Info("payment captured", zap.String("payment_id", payment.ID.String()))
	return payment, nil
}

// Refund places a refund with the gateway, then applies it to the payment.
// The refund invariants are checked before the gateway call so an over-refund
// never reaches the processor; a gateway error surfaces to the caller with
// the payment untouched.
func (s *Service) Refund(ctx context.Context, id snowflake.ID, amount money.Money, reason string) (*paymentdomain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := payment.ValidateRefund(amount); err != nil {
		return nil, err
	}

	if err := s.gateway.Refund(ctx, payment, amount, reason); err != nil {
		s.log.Warn("gateway refund failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := payment.Refund(amount, time.Now().UTC(), reason); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, s.db, payment); err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentOutcome(ctx, "refunded")
	}
	s.log.Info("payment refunded",
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("refund_amount", amount.Amount),
		zap.Int64("refunded_total", payment.RefundedAmount),
		zap.String("status", string(payment.Status)),
	)
	return payment, nil
}

// Fail records a terminal gateway decline reported out-of-band (for example
// through a webhook).
func (s *Service) Fail(ctx context.Context, id snowflake.ID, reason string) (*paymentdomain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := payment.MarkFailed(reason, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, s.db, payment); err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentOutcome(ctx, "failed")
	}
	s.log.Info("payment failed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reason", reason),
	)
	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*paymentdomain.Payment, error) {
	return s.repo.FindByID(ctx, s.db, id)
}
