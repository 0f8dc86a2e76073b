package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
)

type Repository interface {
	Create(ctx context.Context, rate *CommissionRate) error
	FindByID(ctx context.Context, id snowflake.ID) (*CommissionRate, error)
	FindActive(ctx context.Context, partnerID snowflake.ID, category tripcategory.Category) (*CommissionRate, error)
	ListByPartner(ctx context.Context, partnerID snowflake.ID, activeOnly bool) ([]CommissionRate, error)
	Update(ctx context.Context, rate *CommissionRate) error
}
