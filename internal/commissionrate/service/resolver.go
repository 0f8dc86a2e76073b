package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"go.uber.org/zap"
)

type Resolver struct {
	log  *zap.Logger
	repo ratedomain.Repository
}

func NewResolver(log *zap.Logger, repo ratedomain.Repository) ratedomain.Resolver {
	return &Resolver{
		log:  log.Named("commissionrate.resolver"),
		repo: repo,
	}
}

// ResolveRate treats an unrecognised category the same as a missing rate.
func (r *Resolver) ResolveRate(ctx context.Context, partnerID snowflake.ID, tripCategory string) (*decimal.Decimal, error) {
	category, ok := tripcategory.Parse(tripCategory)
	if !ok {
		r.log.Debug("unknown trip category", zap.String("trip_category", tripCategory))
		return nil, nil
	}

	rate, err := r.repo.FindActive(ctx, partnerID, category)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, nil
	}

	pct := rate.Percentage
	return &pct, nil
}
