package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/partnerledger/internal/clock"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"github.com/smallbiznis/partnerledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     ratedomain.Repository
	Partners partnerdomain.Lookup
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     ratedomain.Repository
	partners partnerdomain.Lookup
}

func NewService(p Params) ratedomain.Service {
	return &Service{
		log:      p.Log.Named("commissionrate.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		partners: p.Partners,
	}
}

func (s *Service) Create(ctx context.Context, req ratedomain.CreateRequest) (*ratedomain.CommissionRate, error) {
	partnerID, err := s.resolvePartner(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}

	category, ok := tripcategory.Parse(req.TripCategory)
	if !ok {
		return nil, ratedomain.ErrInvalidTripCategory
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.clock.Now()
	rate := &ratedomain.CommissionRate{
		ID:           s.genID.Generate(),
		PartnerID:    partnerID,
		TripCategory: category,
		Percentage:   req.Percentage,
		IsActive:     isActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := rate.Validate(); err != nil {
		return nil, err
	}

	if rate.IsActive {
		if err := s.ensureNoActiveRate(ctx, rate); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, rate); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, ratedomain.ErrDuplicateActiveRate
		}
		return nil, err
	}

	s.log.Info("commission rate created",
		zap.String("partner_id", rate.PartnerID.String()),
		zap.String("trip_category", rate.TripCategory.String()),
		zap.String("percentage", rate.Percentage.String()),
	)
	return rate, nil
}

func (s *Service) List(ctx context.Context, req ratedomain.ListRequest) ([]ratedomain.CommissionRate, error) {
	partnerID, err := s.resolvePartner(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByPartner(ctx, partnerID, req.ActiveOnly)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ratedomain.CommissionRate{}
	}
	return items, nil
}

func (s *Service) Update(ctx context.Context, req ratedomain.UpdateRequest) (*ratedomain.CommissionRate, error) {
	rate, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	activating := false
	if req.Percentage != nil {
		if err := ratedomain.ValidatePercentage(*req.Percentage); err != nil {
			return nil, err
		}
		rate.Percentage = *req.Percentage
	}
	if req.IsActive != nil {
		activating = *req.IsActive && !rate.IsActive
		rate.IsActive = *req.IsActive
	}

	if activating {
		if err := s.ensureNoActiveRate(ctx, rate); err != nil {
			return nil, err
		}
	}

	rate.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, rate); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, ratedomain.ErrDuplicateActiveRate
		}
		return nil, err
	}
	return rate, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*ratedomain.CommissionRate, error) {
	rate, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rate.IsActive {
		return rate, nil
	}

	rate.IsActive = false
	rate.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, rate); err != nil {
		return nil, err
	}

	s.log.Info("commission rate deactivated",
		zap.String("rate_id", rate.ID.String()),
		zap.String("partner_id", rate.PartnerID.String()),
	)
	return rate, nil
}

func (s *Service) get(ctx context.Context, id string) (*ratedomain.CommissionRate, error) {
	rateID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || rateID == 0 {
		return nil, ratedomain.ErrInvalidID
	}

	rate, err := s.repo.FindByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, ratedomain.ErrNotFound
	}
	return rate, nil
}

func (s *Service) resolvePartner(ctx context.Context, raw string) (snowflake.ID, error) {
	partnerID, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || partnerID == 0 {
		return 0, ratedomain.ErrInvalidPartner
	}
	if s.partners == nil {
		return partnerID, nil
	}

	partner, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		return 0, err
	}
	if partner == nil {
		return 0, partnerdomain.ErrNotFound
	}
	return partnerID, nil
}

func (s *Service) ensureNoActiveRate(ctx context.Context, rate *ratedomain.CommissionRate) error {
	existing, err := s.repo.FindActive(ctx, rate.PartnerID, rate.TripCategory)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != rate.ID {
		return ratedomain.ErrDuplicateActiveRate
	}
	return nil
}
