package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/partnerledger/internal/config"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type SelectorParams struct {
	fx.In

	Log    *zap.Logger
	Repo   partnerdomain.Repository
	Policy *config.CommissionConfigHolder `optional:"true"`
}

// Selector credits, in order: the active partner owning the booking's
// referral code, the configured default partner when it is an active
// marketing partner, then the lowest-id active marketing partner.
type Selector struct {
	log    *zap.Logger
	repo   partnerdomain.Repository
	policy *config.CommissionConfigHolder
}

func NewSelector(p SelectorParams) partnerdomain.Selector {
	return &Selector{
		log:    p.Log.Named("partner.selector"),
		repo:   p.Repo,
		policy: p.Policy,
	}
}

func (s *Selector) SelectCreditPartner(ctx context.Context, attribution partnerdomain.Attribution) (*partnerdomain.Partner, error) {
	if code := strings.TrimSpace(attribution.ReferralCode); code != "" {
		partner, err := s.repo.FindActiveByReferralCode(ctx, slug.Make(code))
		if err != nil {
			return nil, err
		}
		if partner != nil {
			return partner, nil
		}
		s.log.Debug("referral code did not match an active partner", zap.String("referral_code", code))
	}

	if raw := strings.TrimSpace(s.policy.Get().DefaultPartnerID); raw != "" {
		if id, err := snowflake.ParseString(raw); err == nil {
			partner, err := s.repo.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if partner != nil && partner.IsActive && partner.Category == partnerdomain.CategoryMarketing {
				return partner, nil
			}
		}
		s.log.Warn("configured default partner is not an active marketing partner", zap.String("partner_id", raw))
	}

	return s.repo.FirstActiveByCategory(ctx, partnerdomain.CategoryMarketing)
}
