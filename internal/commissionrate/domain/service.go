package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CommissionRate, error)
	List(ctx context.Context, req ListRequest) ([]CommissionRate, error)
	Update(ctx context.Context, req UpdateRequest) (*CommissionRate, error)
	Deactivate(ctx context.Context, id string) (*CommissionRate, error)
}

// Resolver returns the active percentage for a partner and trip category.
// A nil rate with a nil error means no rate applies.
type Resolver interface {
	ResolveRate(ctx context.Context, partnerID snowflake.ID, tripCategory string) (*decimal.Decimal, error)
}

type CreateRequest struct {
	PartnerID    string          `json:"partner_id"`
	TripCategory string          `json:"trip_category"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsActive     *bool           `json:"is_active"`
}

type ListRequest struct {
	PartnerID  string
	ActiveOnly bool
}

type UpdateRequest struct {
	ID         string           `json:"id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	IsActive   *bool            `json:"is_active,omitempty"`
}
