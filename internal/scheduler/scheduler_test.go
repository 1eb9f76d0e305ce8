package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/contentry/ledger/internal/clock"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"

	"github.com/bwmarrin/snowflake"
)

type fakeSettlementService struct {
	result settlementdomain.ProcessResult
	err    error
	calls  int
}

func (f *fakeSettlementService) CreateBatch(ctx context.Context, req settlementdomain.CreateBatchRequest) (*settlementdomain.SettlementBatch, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSettlementService) GetBatchByID(ctx context.Context, id snowflake.ID) (*settlementdomain.SettlementBatch, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSettlementService) GetTransferByID(ctx context.Context, id snowflake.ID) (*settlementdomain.Transfer, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSettlementService) ExecuteTransfer(ctx context.Context, id snowflake.ID) (*settlementdomain.Transfer, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSettlementService) ProcessPending(ctx context.Context) (settlementdomain.ProcessResult, error) {
	f.calls++
	return f.result, f.err
}

func newTestScheduler(t *testing.T, svc settlementdomain.Service) *Scheduler {
	t.Helper()
	sched, err := New(Params{
		Log:           zap.NewNop(),
		SettlementSvc: svc,
		Clock:         clock.NewSystemClock(),
	})
	assert.NoError(t, err)
	return sched
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceProcessesPending(t *testing.T) {
	svc := &fakeSettlementService{result: settlementdomain.ProcessResult{Processed: 3, Sent: 2, Failed: 1}}
	sched := newTestScheduler(t, svc)

	err := sched.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, svc.calls)
}

func TestRunOncePropagatesInfrastructureErrors(t *testing.T) {
	svc := &fakeSettlementService{err: errors.New("db down")}
	sched := newTestScheduler(t, svc)

	err := sched.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestRunOnceTreatsTimeoutAsSoftFailure(t *testing.T) {
	svc := &fakeSettlementService{err: context.DeadlineExceeded}
	sched := newTestScheduler(t, svc)

	err := sched.RunOnce(context.Background())
	assert.NoError(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultConfig().RunInterval, cfg.RunInterval)
	assert.Equal(t, DefaultConfig().JobTimeout, cfg.JobTimeout)
}
