// Package scheduler drives the settlement re-drive job on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/contentry/ledger/internal/clock"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Log           *zap.Logger
	SettlementSvc settlementdomain.Service
	Clock         clock.Clock
	Config        Config `optional:"true"`
}

type Scheduler struct {
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	settlementSvc settlementdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.SettlementSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		settlementSvc: p.SettlementSvc,
	}, nil
}

// RunOnce re-drives all PENDING and FAILED transfers in one pass.
func (s *Scheduler) RunOnce(parent context.Context) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	result, err := s.settlementSvc.ProcessPending(ctx)
	if err != nil {
		// deadline is a soft failure: the next tick picks the work back up
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.log.Warn("settle_pending timed out",
				zap.Duration("timeout", s.cfg.JobTimeout),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	if result.Processed > 0 {
		s.log.Info("settle_pending finished",
			zap.Int("processed", result.Processed),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
