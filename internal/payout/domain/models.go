package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

// StatusPending is the only state this service assigns; later payout
// processing states belong to the remittance system.
const StatusPending Status = "pending"

// CommissionPayout batches a partner's eligible commissions created within
// [PeriodStart, PeriodEnd]. Generating one never changes commission status.
type CommissionPayout struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	PartnerID       snowflake.ID    `gorm:"not null;index" json:"partner_id"`
	PeriodStart     time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd       time.Time       `gorm:"not null" json:"period_end"`
	CommissionCount int64           `gorm:"not null" json:"commission_count"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(28,10);not null" json:"total_amount"`
	Status          Status          `gorm:"type:text;not null" json:"status"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (CommissionPayout) TableName() string { return "commission_payouts" }
