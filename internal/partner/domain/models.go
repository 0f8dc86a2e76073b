package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category classifies how a partner earns credit.
type Category string

const (
	CategoryMarketing Category = "marketing"
	CategoryAgent     Category = "agent"
	CategoryAffiliate Category = "affiliate"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMarketing, CategoryAgent, CategoryAffiliate:
		return true
	default:
		return false
	}
}

// Partner is an entity eligible to earn commission. Commissions and payouts
// reference it by ID only.
type Partner struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Category     Category     `gorm:"type:text;not null;index" json:"category"`
	Email        *string      `gorm:"type:text" json:"email,omitempty"`
	ReferralCode string       `gorm:"type:text;not null;uniqueIndex" json:"referral_code"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (Partner) TableName() string { return "partners" }

// HasContact reports whether commission notifications can be addressed.
func (p *Partner) HasContact() bool {
	return p != nil && p.Email != nil && strings.TrimSpace(*p.Email) != ""
}

func (p *Partner) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if !p.Category.Valid() {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(p.ReferralCode) == "" {
		return ErrInvalidReferralCode
	}
	if p.Email != nil {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}
