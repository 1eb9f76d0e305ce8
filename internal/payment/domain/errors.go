package domain

import "errors"

var (
	ErrPaymentNotFound        = errors.New("payment_not_found")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrInvalidPaymentMethod   = errors.New("invalid_payment_method")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrRefundExceedsPayment   = errors.New("refund_exceeds_payment")
	ErrStalePayment           = errors.New("stale_payment")
)
