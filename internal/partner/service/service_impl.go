package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/partnerledger/internal/clock"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"github.com/smallbiznis/partnerledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  partnerdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  partnerdomain.Repository
}

func NewService(p Params) partnerdomain.Service {
	return &Service{
		log:   p.Log.Named("partner.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req partnerdomain.CreateRequest) (*partnerdomain.Partner, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, partnerdomain.ErrInvalidName
	}

	code := slug.Make(name)
	if req.ReferralCode != nil {
		code = slug.Make(*req.ReferralCode)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.clock.Now()
	partner := &partnerdomain.Partner{
		ID:           s.genID.Generate(),
		Name:         name,
		Category:     normalizeCategory(req.Category),
		Email:        normalizeEmail(req.Email),
		ReferralCode: code,
		IsActive:     isActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := partner.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActiveByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, partnerdomain.ErrDuplicateReferralCode
	}

	if err := s.repo.Create(ctx, partner); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, partnerdomain.ErrDuplicateReferralCode
		}
		return nil, err
	}

	s.log.Info("partner created",
		zap.String("partner_id", partner.ID.String()),
		zap.String("category", string(partner.Category)),
		zap.String("referral_code", partner.ReferralCode),
	)
	return partner, nil
}

func (s *Service) Get(ctx context.Context, id string) (*partnerdomain.Partner, error) {
	partnerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	partner, err := s.repo.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, partnerdomain.ErrNotFound
	}
	return partner, nil
}

func (s *Service) List(ctx context.Context, req partnerdomain.ListRequest) ([]partnerdomain.Partner, error) {
	filter := partnerdomain.ListRequest{IsActive: req.IsActive}
	if strings.TrimSpace(string(req.Category)) != "" {
		filter.Category = normalizeCategory(req.Category)
		if !filter.Category.Valid() {
			return nil, partnerdomain.ErrInvalidCategory
		}
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []partnerdomain.Partner{}
	}
	return items, nil
}

func (s *Service) Update(ctx context.Context, req partnerdomain.UpdateRequest) (*partnerdomain.Partner, error) {
	partner, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		partner.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		partner.Category = normalizeCategory(*req.Category)
	}
	if req.Email != nil {
		partner.Email = normalizeEmail(req.Email)
	}
	if req.IsActive != nil {
		partner.IsActive = *req.IsActive
	}
	if err := partner.Validate(); err != nil {
		return nil, err
	}

	partner.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*partnerdomain.Partner, error) {
	partner, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !partner.IsActive {
		return partner, nil
	}

	partner.IsActive = false
	partner.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, partner); err != nil {
		return nil, err
	}

	s.log.Info("partner deactivated", zap.String("partner_id", partner.ID.String()))
	return partner, nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, partnerdomain.ErrInvalidID
	}
	return id, nil
}

func normalizeCategory(category partnerdomain.Category) partnerdomain.Category {
	return partnerdomain.Category(strings.ToLower(strings.TrimSpace(string(category))))
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
