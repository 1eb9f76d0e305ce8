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
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  accountdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  accountdomain.Repository
}

func NewService(p Params) accountdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) EnsureForOwner(ctx context.Context, ownerAccountID snowflake.ID, capabilities ...accountdomain.Capability) (*accountdomain.MonetizationAccount, error) {
	existing, err := s.repo.FindByOwner(ctx, s.db, ownerAccountID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, accountdomain.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	account := &accountdomain.MonetizationAccount{
		ID:             s.genID.Generate(),
		OwnerAccountID: ownerAccountID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, capability := range capabilities {
		account.GrantCapability(capability, now)
	}
	if err := s.repo.Create(ctx, s.db, account); err != nil {
		return nil, err
	}
	s.log.Info("monetization account created",
		zap.String("account_id", account.ID.String()),
		zap.String("owner_account_id", ownerAccountID.String()),
	)
	return account, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*accountdomain.MonetizationAccount, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) GrantCapability(ctx context.Context, id snowflake.ID, capability accountdomain.Capability) (*accountdomain.MonetizationAccount, error) {
	account, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	account.GrantCapability(capability, time.Now().UTC())
	if err := s.repo.Save(ctx, s.db, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) AttachConnectedAccount(ctx context.Context, id snowflake.ID, externalID string) (*accountdomain.MonetizationAccount, error) {
	account, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := account.AttachConnectedAccount(externalID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, s.db, account); err != nil {
		return nil, err
	}
	s.log.Info("connected account attached",
		zap.String("account_id", account.ID.String()),
		zap.String("connected_account_id", externalID),
	)
	return account, nil
}

func (s *Service) UpdateConnectedAccountStatus(ctx context.Context, id snowflake.ID, status accountdomain.ConnectedAccountStatus) (*accountdomain.MonetizationAccount, error) {
	account, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := account.UpdateConnectedAccountStatus(status, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, s.db, account); err != nil {
		return nil, err
	}
	s.log.Info("connected account status updated",
		zap.String("account_id", account.ID.String()),
		zap.String("status", string(status)),
	)
	return account, nil
}
