package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
)

var hundred = decimal.NewFromInt(100)

// AmountScale is the number of fractional digits booking_amount stores.
const AmountScale = 4

// ValidBookingAmount reports whether amount is positive and fits the
// booking_amount column without rounding.
func ValidBookingAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(AmountScale))
}

// Commission is the ledger entry owed to a partner for one booking. Rows are
// never deleted; BookingID is unique.
type Commission struct {
	ID               snowflake.ID          `gorm:"primaryKey" json:"id"`
	PartnerID        snowflake.ID          `gorm:"not null;index" json:"partner_id"`
	BookingID        string                `gorm:"type:text;not null;uniqueIndex" json:"booking_id"`
	BookingAmount    decimal.Decimal       `gorm:"type:numeric(20,4);not null" json:"booking_amount"`
	CommissionRate   decimal.Decimal       `gorm:"type:numeric(7,4);not null" json:"commission_rate"`
	CommissionAmount decimal.Decimal       `gorm:"type:numeric(28,10);not null" json:"commission_amount"`
	Currency         string                `gorm:"type:text;not null" json:"currency"`
	TripCategory     tripcategory.Category `gorm:"type:text;not null" json:"trip_category"`
	TripTitle        *string               `gorm:"type:text" json:"trip_title,omitempty"`
	Status           Status                `gorm:"type:text;not null" json:"status"`
	PaidAt           *time.Time            `json:"paid_at,omitempty"`
	PaymentReference *string               `gorm:"type:text" json:"payment_reference,omitempty"`
	CreatedAt        time.Time             `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"not null" json:"updated_at"`
}

func (Commission) TableName() string { return "commissions" }

// ComputeAmount keeps full precision; rounding happens at display or
// remittance time.
func ComputeAmount(bookingAmount, percentage decimal.Decimal) decimal.Decimal {
	return bookingAmount.Mul(percentage).Div(hundred)
}

// StatusEvent is an append-only record of one status change. FromStatus is
// nil for the creation event.
type StatusEvent struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	CommissionID snowflake.ID `gorm:"not null;index" json:"commission_id"`
	FromStatus   *Status      `gorm:"type:text" json:"from_status,omitempty"`
	ToStatus     Status       `gorm:"type:text;not null" json:"to_status"`
	Actor        string       `gorm:"type:text;not null" json:"actor"`
	OccurredAt   time.Time    `gorm:"not null" json:"occurred_at"`
}

func (StatusEvent) TableName() string { return "commission_status_events" }
