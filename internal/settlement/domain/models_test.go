package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransfer_MarkSent_RequiresExternalID(t *testing.T) {
	transfer := &Transfer{Status: TransferStatusPending}
	assert.ErrorIs(t, transfer.MarkSent(time.Now()), ErrInvalidExternalTransferID)

	assert.NoError(t, transfer.RecordExternalTransferID("tr_123"))
	assert.NoError(t, transfer.MarkSent(time.Now()))
	assert.Equal(t, TransferStatusSent, transfer.Status)
	assert.NotNil(t, transfer.SentAt)
}

func TestTransfer_RecordExternalTransferID_Empty(t *testing.T) {
	transfer := &Transfer{Status: TransferStatusPending}
	assert.ErrorIs(t, transfer.RecordExternalTransferID("  "), ErrInvalidExternalTransferID)
}

func TestTransfer_FailedIsRetryable(t *testing.T) {
	transfer := &Transfer{Status: TransferStatusPending}
	assert.NoError(t, transfer.MarkFailed("gateway down", time.Now()))
	assert.Equal(t, TransferStatusFailed, transfer.Status)
	assert.Equal(t, "gateway down", transfer.FailureReason)
	assert.True(t, transfer.Executable())

	// a retry that succeeds clears the failure fields
	assert.NoError(t, transfer.RecordExternalTransferID("tr_retry"))
	assert.NoError(t, transfer.MarkSent(time.Now()))
	assert.Equal(t, TransferStatusSent, transfer.Status)
	assert.Nil(t, transfer.FailedAt)
	assert.Empty(t, transfer.FailureReason)
}

func TestTransfer_SentIsTerminal(t *testing.T) {
	transfer := &Transfer{Status: TransferStatusPending}
	assert.NoError(t, transfer.RecordExternalTransferID("tr_123"))
	assert.NoError(t, transfer.MarkSent(time.Now()))

	assert.False(t, transfer.Executable())
	assert.ErrorIs(t, transfer.MarkFailed("late failure", time.Now()), ErrInvalidStateTransition)
	assert.ErrorIs(t, transfer.MarkSent(time.Now()), ErrInvalidStateTransition)
}
