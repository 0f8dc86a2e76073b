package domain

import "errors"

var (
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidCategory       = errors.New("invalid_category")
	ErrInvalidEmail          = errors.New("invalid_email")
	ErrInvalidReferralCode   = errors.New("invalid_referral_code")
	ErrDuplicateReferralCode = errors.New("duplicate_referral_code")
	ErrNotFound              = errors.New("not_found")
)
