package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
)

var ErrInvalidPartner = errors.New("invalid_partner")

type StatusTotal struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary totals a partner's commissions per status. TotalPayable is
// pending plus eligible.
type Summary struct {
	PartnerID    snowflake.ID    `json:"partner_id"`
	Pending      StatusTotal     `json:"pending"`
	Eligible     StatusTotal     `json:"eligible"`
	Paid         StatusTotal     `json:"paid"`
	Voided       StatusTotal     `json:"voided"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}

type CategoryEarnings struct {
	TripCategory          tripcategory.Category `json:"trip_category"`
	BookingCount          int64                 `json:"booking_count"`
	TotalBookingAmount    decimal.Decimal       `json:"total_booking_amount"`
	TotalCommissionAmount decimal.Decimal       `json:"total_commission_amount"`
}

type RecentCommission struct {
	ID               snowflake.ID            `json:"id"`
	BookingID        string                  `json:"booking_id"`
	TripTitle        *string                 `json:"trip_title,omitempty"`
	TripCategory     tripcategory.Category   `json:"trip_category"`
	BookingAmount    decimal.Decimal         `json:"booking_amount"`
	CommissionAmount decimal.Decimal         `json:"commission_amount"`
	Currency         string                  `json:"currency"`
	Status           commissiondomain.Status `json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
}

type FullEarnings struct {
	Summary    Summary            `json:"summary"`
	Categories []CategoryEarnings `json:"categories"`
	Recent     []RecentCommission `json:"recent"`
}
