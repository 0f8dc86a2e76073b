package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidBookingID    = errors.New("invalid_booking_id")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidPartner      = errors.New("invalid_partner")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrDuplicateCommission = errors.New("duplicate_commission")
	ErrNotFound            = errors.New("not_found")
)
