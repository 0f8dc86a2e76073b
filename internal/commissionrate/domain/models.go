package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
)

var maxPercentage = decimal.NewFromInt(100)

// PercentageScale is the number of fractional digits the percentage column stores.
const PercentageScale = 4

// CommissionRate is the percentage a partner earns on one trip category.
// At most one active rate exists per (partner, trip category).
type CommissionRate struct {
	ID           snowflake.ID          `gorm:"primaryKey" json:"id"`
	PartnerID    snowflake.ID          `gorm:"not null;index" json:"partner_id"`
	TripCategory tripcategory.Category `gorm:"type:text;not null" json:"trip_category"`
	Percentage   decimal.Decimal       `gorm:"type:numeric(7,4);not null" json:"percentage"`
	IsActive     bool                  `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time             `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time             `gorm:"not null" json:"updated_at"`
}

func (CommissionRate) TableName() string { return "commission_rates" }

func (r *CommissionRate) Validate() error {
	if r.PartnerID == 0 {
		return ErrInvalidPartner
	}
	if !r.TripCategory.Valid() {
		return ErrInvalidTripCategory
	}
	return ValidatePercentage(r.Percentage)
}

// ValidatePercentage accepts values in [0, 100] with at most four
// fractional digits.
func ValidatePercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(maxPercentage) {
		return ErrInvalidRate
	}
	if !pct.Equal(pct.Truncate(PercentageScale)) {
		return ErrInvalidRate
	}
	return nil
}
