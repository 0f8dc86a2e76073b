package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidPartner      = errors.New("invalid_partner")
	ErrInvalidTripCategory = errors.New("invalid_trip_category")
	ErrInvalidRate         = errors.New("invalid_rate")
	ErrDuplicateActiveRate = errors.New("duplicate_active_rate")
	ErrNotFound            = errors.New("not_found")
)
