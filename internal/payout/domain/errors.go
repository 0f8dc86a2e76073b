package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPartner   = errors.New("invalid_partner")
	ErrInvalidPeriod    = errors.New("invalid_period")
	ErrPayoutInProgress = errors.New("payout_in_progress")
	ErrNotFound         = errors.New("not_found")
)
