package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, payout *CommissionPayout) error
	FindByID(ctx context.Context, id snowflake.ID) (*CommissionPayout, error)
	ListByPartner(ctx context.Context, partnerID snowflake.ID) ([]CommissionPayout, error)
}
