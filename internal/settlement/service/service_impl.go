package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/contentry/ledger/internal/account/domain"
	"github.com/contentry/ledger/internal/money"
	obsmetrics "github.com/contentry/ledger/internal/observability/metrics"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        settlementdomain.Repository
	AccountRepo accountdomain.Repository
	Gateway     settlementdomain.Gateway
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        settlementdomain.Repository
	accountRepo accountdomain.Repository
	gateway     settlementdomain.Gateway
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) settlementdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("settlement.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		gateway:     p.Gateway,
		obsMetrics:  p.ObsMetrics,
	}
}

// CreateBatch groups the payouts owed to an account over a period into
// PENDING transfers.
func (s *Service) CreateBatch(ctx context.Context, req settlementdomain.CreateBatchRequest) (*settlementdomain.SettlementBatch, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, settlementdomain.ErrInvalidPeriod
	}
	if len(req.Payouts) == 0 {
		return nil, settlementdomain.ErrNoPayouts
	}
	if _, err := s.accountRepo.FindByID(ctx, s.db, req.AccountID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	batch := &settlementdomain.SettlementBatch{
		ID:          s.genID.Generate(),
		AccountID:   req.AccountID,
		PeriodStart: req.PeriodStart.UTC(),
		PeriodEnd:   req.PeriodEnd.UTC(),
		CreatedAt:   now,
	}
	for _, payout := range req.Payouts {
		amount, err := money.New(payout.Amount, payout.Currency)
		if err != nil {
			return nil, err
		}
		if amount.IsZero() {
			return nil, settlementdomain.ErrNoPayouts
		}
		batch.Transfers = append(batch.Transfers, settlementdomain.Transfer{
			ID:        s.genID.Generate(),
			BatchID:   batch.ID,
			AccountID: req.AccountID,
			Amount:    amount,
			Status:    settlementdomain.TransferStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.repo.CreateBatch(ctx, s.db, batch); err != nil {
		return nil, err
	}
	s.log.Info("settlement batch created",
		zap.String("batch_id", batch.ID.String()),
		zap.String("account_id", batch.AccountID.String()),
		zap.Int("transfers", len(batch.Transfers)),
	)
	return batch, nil
}

func (s *Service) GetBatchByID(ctx context.Context, id snowflake.ID) (*settlementdomain.SettlementBatch, error) {
	return s.repo.FindBatchByID(ctx, s.db, id)
}

func (s *Service) GetTransferByID(ctx context.Context, id snowflake.ID) (*settlementdomain.Transfer, error) {
	return s.repo.FindTransferByID(ctx, s.db, id)
}

// ExecuteTransfer attempts the payout. The load, the eligibility check and
// the gateway call run inside one transaction per transfer: the row is loaded
// under lock and claimed (version advance) before the processor is asked to
// pay, so two concurrent executions of the same transfer cannot both place
// the payout. Eligibility and gateway failures are recorded on the transfer
// (MarkFailed) and the transfer is always persisted; only NotFound, lost
// claims and infrastructure errors propagate.
func (s *Service) ExecuteTransfer(ctx context.Context, id snowflake.ID) (*settlementdomain.Transfer, error) {
	var out *settlementdomain.Transfer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transfer, err := s.repo.FindTransferByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if transfer.Status == settlementdomain.TransferStatusSent {
			return settlementdomain.ErrTransferAlreadySent
		}
		if err := s.repo.ClaimTransfer(ctx, tx, transfer); err != nil {
			return err
		}

		// The eligibility read and the gateway call share one load: the
		// account state checked is the state handed to the gateway.
		account, err := s.accountRepo.FindByID(ctx, tx, transfer.AccountID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if execErr := s.attempt(ctx, transfer, account); execErr != nil {
			reason, recordable := failureReason(execErr)
			if !recordable {
				return execErr
			}
			if err := transfer.MarkFailed(reason, now); err != nil {
				return err
			}
			if err := s.repo.SaveTransfer(ctx, tx, transfer); err != nil {
				return err
			}
			if s.obsMetrics != nil {
				s.obsMetrics.RecordTransferOutcome(ctx, "failed")
			}
			s.log.Warn("transfer failed",
				zap.String("transfer_id", transfer.ID.String()),
				zap.String("reason", reason),
			)
			out = transfer
			return nil
		}

		if err := transfer.MarkSent(now); err != nil {
			return err
		}
		if err := s.repo.SaveTransfer(ctx, tx, transfer); err != nil {
			return err
		}
		if s.obsMetrics != nil {
			s.obsMetrics.RecordTransferOutcome(ctx, "sent")
		}
		s.log.Info("transfer sent",
			zap.String("transfer_id", transfer.ID.String()),
			zap.Stringp("external_transfer_id", transfer.ExternalTransferID),
			zap.Int64("amount", transfer.Amount.Amount),
			zap.String("currency", string(transfer.Amount.Currency)),
		)
		out = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// attempt runs the eligibility check and the gateway call, recording the
// external transfer id on success.
func (s *Service) attempt(ctx context.Context, transfer *settlementdomain.Transfer, account *accountdomain.MonetizationAccount) error {
	if err := account.AssertCanReceivePayout(); err != nil {
		return err
	}
	externalID, err := s.gateway.Execute(ctx, transfer, account)
	if err != nil {
		return err
	}
	return transfer.RecordExternalTransferID(externalID)
}

// failureReason maps an execution error to durable transfer state. Payout
// eligibility violations and gateway failures are recordable; anything else
// propagates.
func failureReason(err error) (string, bool) {
	var gatewayErr *settlementdomain.GatewayError
	switch {
	case errors.As(err, &gatewayErr):
		return gatewayErr.Message, true
	case errors.Is(err, accountdomain.ErrPayoutNotAllowed):
		return err.Error(), true
	case errors.Is(err, settlementdomain.ErrInvalidExternalTransferID):
		return err.Error(), true
	}
	return "", false
}

// ProcessPending re-drives all PENDING and FAILED transfers. Failures are
// counted, never fatal to the pass.
func (s *Service) ProcessPending(ctx context.Context) (settlementdomain.ProcessResult, error) {
	var result settlementdomain.ProcessResult
	transfers, err := s.repo.FindPendingTransfers(ctx, s.db, 0)
	if err != nil {
		return result, err
	}

	for _, transfer := range transfers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		executed, err := s.ExecuteTransfer(ctx, transfer.ID)
		if err != nil {
			// a concurrent executor got there first; nothing is owed from
			// this pass
			if errors.Is(err, settlementdomain.ErrTransferAlreadySent) ||
				errors.Is(err, settlementdomain.ErrStaleTransfer) {
				continue
			}
			result.Processed++
			result.Failed++
			s.log.Error("transfer execution errored",
				zap.String("transfer_id", transfer.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Processed++
		switch executed.Status {
		case settlementdomain.TransferStatusSent:
			result.Sent++
		case settlementdomain.TransferStatusFailed:
			result.Failed++
		}
	}
	return result, nil
}
