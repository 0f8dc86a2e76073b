package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, partner *Partner) error
	FindByID(ctx context.Context, id snowflake.ID) (*Partner, error)
	FindActiveByReferralCode(ctx context.Context, code string) (*Partner, error)
	FirstActiveByCategory(ctx context.Context, category Category) (*Partner, error)
	List(ctx context.Context, filter ListRequest) ([]Partner, error)
	Update(ctx context.Context, partner *Partner) error
}
