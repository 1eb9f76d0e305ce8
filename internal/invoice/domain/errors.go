package domain

import "errors"

var (
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrNoLines            = errors.New("invoice requires at least one line")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidDiscount    = errors.New("invalid_discount")
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrInvalidTaxMode     = errors.New("invalid_tax_mode")
	ErrInvoiceVoided      = errors.New("invoice_voided")
	ErrInvoiceAlreadyPaid = errors.New("invoice_already_paid")
)
