package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Partner, error)
	Get(ctx context.Context, id string) (*Partner, error)
	List(ctx context.Context, req ListRequest) ([]Partner, error)
	Update(ctx context.Context, req UpdateRequest) (*Partner, error)
	Deactivate(ctx context.Context, id string) (*Partner, error)
}

// Attribution carries whatever the booking knows about who referred it.
type Attribution struct {
	ReferralCode string
}

// Selector decides which partner is credited for a booking. A nil partner
// with a nil error means no partner qualifies.
type Selector interface {
	SelectCreditPartner(ctx context.Context, attribution Attribution) (*Partner, error)
}

// Lookup is the read-only view other modules use to load partner details.
type Lookup interface {
	FindByID(ctx context.Context, id snowflake.ID) (*Partner, error)
}

type ListRequest struct {
	Category Category
	IsActive *bool
}

type CreateRequest struct {
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Email        *string  `json:"email"`
	ReferralCode *string  `json:"referral_code"`
	IsActive     *bool    `json:"is_active"`
}

type UpdateRequest struct {
	ID       string    `json:"id"`
	Name     *string   `json:"name,omitempty"`
	Category *Category `json:"category,omitempty"`
	Email    *string   `json:"email,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}
