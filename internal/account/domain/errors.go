package domain

import "errors"

var (
	ErrAccountNotFound         = errors.New("monetization_account_not_found")
	ErrAccountExists           = errors.New("monetization_account_exists")
	ErrInvalidCapability       = errors.New("invalid_capability")
	ErrInvalidConnectedAccount = errors.New("invalid_connected_account")
	ErrInvalidConnectedStatus  = errors.New("invalid_connected_account_status")
	ErrPayoutNotAllowed        = errors.New("payout_not_allowed")
)
