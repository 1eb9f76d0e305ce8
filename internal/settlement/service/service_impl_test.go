package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/contentry/ledger/internal/account/domain"
	accountrepo "github.com/contentry/ledger/internal/account/repository"
	"github.com/contentry/ledger/internal/money"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
	settlementrepo "github.com/contentry/ledger/internal/settlement/repository"
)

type fakeTransferGateway struct {
	mu         sync.Mutex
	executeErr error
	externalID string
	calls      int
}

func (g *fakeTransferGateway) Execute(ctx context.Context, transfer *settlementdomain.Transfer, account *accountdomain.MonetizationAccount) (string, error) {
	g.mu.Lock()
	g.calls++
	executeErr := g.executeErr
	externalID := g.externalID
	g.mu.Unlock()

	if executeErr != nil {
		return "", executeErr
	}
	if externalID != "" {
		return externalID, nil
	}
	return "tr_" + transfer.ID.String(), nil
}

type fixture struct {
	svc     settlementdomain.Service
	db      *gorm.DB
	node    *snowflake.Node
	gateway *fakeTransferGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&accountdomain.MonetizationAccount{},
		&settlementdomain.SettlementBatch{},
		&settlementdomain.Transfer{},
	))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)
	gateway := &fakeTransferGateway{}

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        settlementrepo.Provide(),
		AccountRepo: accountrepo.Provide(),
		Gateway:     gateway,
	})
	return &fixture{svc: svc, db: db, node: node, gateway: gateway}
}

func (f *fixture) createAccount(t *testing.T, status *accountdomain.ConnectedAccountStatus, capabilities ...accountdomain.Capability) *accountdomain.MonetizationAccount {
	t.Helper()
	now := time.Now().UTC()
	account := &accountdomain.MonetizationAccount{
		ID:             f.node.Generate(),
		OwnerAccountID: f.node.Generate(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, capability := range capabilities {
		account.GrantCapability(capability, now)
	}
	if status != nil {
		assert.NoError(t, account.AttachConnectedAccount("acct_"+account.ID.String(), now))
		assert.NoError(t, account.UpdateConnectedAccountStatus(*status, now))
	}
	assert.NoError(t, f.db.Create(account).Error)
	return account
}

func payoutEligibleAccount(t *testing.T, f *fixture) *accountdomain.MonetizationAccount {
	enabled := accountdomain.ConnectedAccountStatusEnabled
	return f.createAccount(t, &enabled, accountdomain.CapabilityReceivePayout)
}

func (f *fixture) createBatch(t *testing.T, accountID snowflake.ID) *settlementdomain.SettlementBatch {
	t.Helper()
	now := time.Now().UTC()
	batch, err := f.svc.CreateBatch(context.Background(), settlementdomain.CreateBatchRequest{
		AccountID:   accountID,
		PeriodStart: now.Add(-30 * 24 * time.Hour),
		PeriodEnd:   now,
		Payouts:     []money.Money{{Amount: 10000, Currency: money.KRW}},
	})
	assert.NoError(t, err)
	return batch
}

func TestCreateBatch_Validation(t *testing.T) {
	f := newFixture(t)
	account := payoutEligibleAccount(t, f)
	now := time.Now()

	_, err := f.svc.CreateBatch(context.Background(), settlementdomain.CreateBatchRequest{
		AccountID:   account.ID,
		PeriodStart: now,
		PeriodEnd:   now.Add(-time.Hour),
		Payouts:     []money.Money{{Amount: 100, Currency: money.KRW}},
	})
	assert.ErrorIs(t, err, settlementdomain.ErrInvalidPeriod)

	_, err = f.svc.CreateBatch(context.Background(), settlementdomain.CreateBatchRequest{
		AccountID:   account.ID,
		PeriodStart: now.Add(-time.Hour),
		PeriodEnd:   now,
	})
	assert.ErrorIs(t, err, settlementdomain.ErrNoPayouts)

	_, err = f.svc.CreateBatch(context.Background(), settlementdomain.CreateBatchRequest{
		AccountID:   f.node.Generate(),
		PeriodStart: now.Add(-time.Hour),
		PeriodEnd:   now,
		Payouts:     []money.Money{{Amount: 100, Currency: money.KRW}},
	})
	assert.ErrorIs(t, err, accountdomain.ErrAccountNotFound)
}

func TestExecuteTransfer_Success(t *testing.T) {
	f := newFixture(t)
	account := payoutEligibleAccount(t, f)
	batch := f.createBatch(t, account.ID)

	transfer, err := f.svc.ExecuteTransfer(context.Background(), batch.Transfers[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, settlementdomain.TransferStatusSent, transfer.Status)
	assert.NotNil(t, transfer.ExternalTransferID)
	assert.NotNil(t, transfer.SentAt)
}

func TestExecuteTransfer_IneligibleAccount_FailsAsState(t *testing.T) {
	f := newFixture(t)
	restricted := accountdomain.ConnectedAccountStatusRestricted
	account := f.createAccount(t, &restricted, accountdomain.CapabilityReceivePayout)
	batch := f.createBatch(t, account.ID)

	// no error past the use case boundary
	transfer, err := f.svc.ExecuteTransfer(context.Background(), batch.Transfers[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, settlementdomain.TransferStatusFailed, transfer.Status)
	assert.NotEmpty(t, transfer.FailureReason)
	assert.Equal(t, 0, f.gateway.calls)

	// the failure is durable
	reloaded, err := f.svc.GetTransferByID(context.Background(), transfer.ID)
	assert.NoError(t, err)
	assert.Equal(t, settlementdomain.TransferStatusFailed, reloaded.Status)
}

func TestExecuteTransfer_GatewayFailure_ThenRetrySucceeds(t *testing.T) {
	f := newFixture(t)
	account := payoutEligibleAccount(t, f)
	batch := f.createBatch(t, account.ID)
	transferID := batch.Transfers[0].ID

	f.gateway.executeErr = settlementdomain.NewGatewayError("insufficient platform balance")
	transfer, err := f.svc.ExecuteTransfer(context.Background(), transferID)
	assert.NoError(t, err)
	assert.Equal(t, settlementdomain.TransferStatusFailed, transfer.Status)
	assert.Equal(t, "insufficient platform balance", transfer.FailureReason)

	// FAILED -> SENT on retry
	f.gateway.executeErr = nil
	transfer, err = f.svc.ExecuteTransfer(context.Background(), transferID)
	assert.NoError(t, err)
	assert.Equal(t, settlementdomain.TransferStatusSent, transfer.Status)
	assert.Empty(t, transfer.FailureReason)
}

func TestExecuteTransfer_NotFoundPropagates(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ExecuteTransfer(context.Background(), f.node.Generate())
	assert.ErrorIs(t, err, settlementdomain.ErrTransferNotFound)
}

func TestExecuteTransfer_AlreadySent(t *testing.T) {
	f := newFixture(t)
	account := payoutEligibleAccount(t, f)
	batch := f.createBatch(t, account.ID)
	transferID := batch.Transfers[0].ID

	_, err := f.svc.ExecuteTransfer(context.Background(), transferID)
	assert.NoError(t, err)

	_, err = f.svc.ExecuteTransfer(context.Background(), transferID)
	assert.ErrorIs(t, err, settlementdomain.ErrTransferAlreadySent)
	assert.Equal(t, 1, f.gateway.calls)
}

func TestExecuteTransfer_ConcurrentExecutionsPlaceOnePayout(t *testing.T) {
	f := newFixture(t)
	account := payoutEligibleAccount(t, f)
	batch := f.createBatch(t, account.ID)
	transferID := batch.Transfers[0].ID

	// single connection: a second pooled connection to an in-memory sqlite
	// database would see its own empty schema
	sqlDB, err := f.db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ExecuteTransfer(context.Background(), transferID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, settlementdomain.ErrTransferAlreadySent),
			errors.Is(err, settlementdomain.ErrStaleTransfer):
			lost++
		default:
			t.Fatalf("unexpected execution error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Equal(t, 1, f.gateway.calls)

	reloaded, err := f.svc.GetTransferByID(context.Background(), transferID)
	assert.NoError(t, err)
	assert.Equal(t, settlementdomain.TransferStatusSent, reloaded.Status)
}

// staleListingRepo lists a transfer as pending even though it has since
// flipped to SENT, the window ProcessPending can race into.
type staleListingRepo struct {
	listed settlementdomain.Transfer
	sent   settlementdomain.Transfer
}

func (r *staleListingRepo) CreateBatch(ctx context.Context, db *gorm.DB, batch *settlementdomain.SettlementBatch) error {
	return nil
}

func (r *staleListingRepo) FindBatchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*settlementdomain.SettlementBatch, error) {
	return nil, settlementdomain.ErrBatchNotFound
}

func (r *staleListingRepo) FindTransferByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*settlementdomain.Transfer, error) {
	item := r.sent
	return &item, nil
}

func (r *staleListingRepo) FindTransferByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*settlementdomain.Transfer, error) {
	item := r.sent
	return &item, nil
}

func (r *staleListingRepo) FindPendingTransfers(ctx context.Context, db *gorm.DB, limit int) ([]settlementdomain.Transfer, error) {
	return []settlementdomain.Transfer{r.listed}, nil
}

func (r *staleListingRepo) ClaimTransfer(ctx context.Context, db *gorm.DB, transfer *settlementdomain.Transfer) error {
	return nil
}

func (r *staleListingRepo) SaveTransfer(ctx context.Context, db *gorm.DB, transfer *settlementdomain.Transfer) error {
	return nil
}

func TestProcessPending_SkipsTransfersSentSinceListing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	listed := settlementdomain.Transfer{
		ID:     node.Generate(),
		Status: settlementdomain.TransferStatusPending,
		Amount: money.Money{Amount: 10000, Currency: money.KRW},
	}
	sent := listed
	sent.Status = settlementdomain.TransferStatusSent

	gateway := &fakeTransferGateway{}
	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        &staleListingRepo{listed: listed, sent: sent},
		AccountRepo: accountrepo.Provide(),
		Gateway:     gateway,
	})

	// the benign race is a skip, not a failure
	result, err := svc.ProcessPending(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, gateway.calls)
}

func TestProcessPending_ContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	eligible := payoutEligibleAccount(t, f)
	restricted := accountdomain.ConnectedAccountStatusRestricted
	ineligible := f.createAccount(t, &restricted, accountdomain.CapabilityReceivePayout)

	f.createBatch(t, ineligible.ID)
	f.createBatch(t, eligible.ID)

	result, err := f.svc.ProcessPending(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)

	// the failed transfer stays queued for the next pass
	result, err = f.svc.ProcessPending(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Failed)
}
