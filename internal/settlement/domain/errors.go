package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTransferNotFound          = errors.New("transfer_not_found")
	ErrBatchNotFound             = errors.New("settlement_batch_not_found")
	ErrInvalidPeriod             = errors.New("invalid_settlement_period")
	ErrNoPayouts                 = errors.New("settlement_batch_requires_payouts")
	ErrInvalidStateTransition    = errors.New("invalid_state_transition")
	ErrInvalidExternalTransferID = errors.New("invalid_external_transfer_id")
	ErrTransferAlreadySent       = errors.New("transfer_already_sent")
	ErrStaleTransfer             = errors.New("stale_transfer")
)

// GatewayError is a transfer gateway failure. It is absorbed into transfer
// state (MarkFailed) instead of propagating past the use case.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("transfer gateway: %s", e.Message)
}

func NewGatewayError(format string, args ...any) *GatewayError {
	return &GatewayError{Message: fmt.Sprintf(format, args...)}
}
