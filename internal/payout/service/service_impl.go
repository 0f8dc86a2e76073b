package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/partnerledger/internal/clock"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	obsmetrics "github.com/smallbiznis/partnerledger/internal/observability/metrics"
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
	"github.com/smallbiznis/partnerledger/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const runLockTTL = 2 * time.Minute

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        payoutdomain.Repository
	Commissions commissiondomain.Repository
	Locker      payoutdomain.RunLocker `optional:"true"`
	Metrics     *obsmetrics.Metrics    `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        payoutdomain.Repository
	commissions commissiondomain.Repository
	locker      payoutdomain.RunLocker
	metrics     *obsmetrics.Metrics
}

func NewService(p Params) payoutdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payout.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		commissions: p.Commissions,
		locker:      p.Locker,
		metrics:     p.Metrics,
	}
}

func (s *Service) GeneratePayout(ctx context.Context, req payoutdomain.GenerateRequest) (*payoutdomain.CommissionPayout, error) {
	partnerID, err := parsePartnerID(req.PartnerID)
	if err != nil {
		return nil, err
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() || req.PeriodEnd.Before(req.PeriodStart) {
		return nil, payoutdomain.ErrInvalidPeriod
	}
	start := req.PeriodStart.UTC()
	end := req.PeriodEnd.UTC()

	log := s.log.With(
		zap.String("partner_id", partnerID.String()),
		zap.Time("period_start", start),
		zap.Time("period_end", end),
	)

	if s.locker != nil {
		key := ratelimit.PayoutRunKey(partnerID.String())
		token, ok, err := s.locker.TryLock(ctx, key, runLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Warn("payout run already in progress")
			return nil, payoutdomain.ErrPayoutInProgress
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
				log.Warn("release payout run lock", zap.Error(err))
			}
		}()
	}

	items, err := s.commissions.ListEligibleInWindow(ctx, s.db, partnerID, start, end)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		log.Info("no eligible commissions in period, payout skipped")
		return nil, nil
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.CommissionAmount)
	}

	now := s.clock.Now()
	payout := &payoutdomain.CommissionPayout{
		ID:              s.genID.Generate(),
		PartnerID:       partnerID,
		PeriodStart:     start,
		PeriodEnd:       end,
		CommissionCount: int64(len(items)),
		TotalAmount:     total,
		Status:          payoutdomain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, payout); err != nil {
		return nil, err
	}

	log.Info("payout generated",
		zap.String("payout_id", payout.ID.String()),
		zap.Int64("commission_count", payout.CommissionCount),
		zap.String("total_amount", payout.TotalAmount.String()),
	)
	s.metrics.RecordPayoutGenerated(ctx)
	return payout, nil
}

func (s *Service) Get(ctx context.Context, id string) (*payoutdomain.CommissionPayout, error) {
	payoutID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || payoutID == 0 {
		return nil, payoutdomain.ErrInvalidID
	}

	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, payoutdomain.ErrNotFound
	}
	return payout, nil
}

func (s *Service) List(ctx context.Context, partnerID string) ([]payoutdomain.CommissionPayout, error) {
	id, err := parsePartnerID(partnerID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByPartner(ctx, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []payoutdomain.CommissionPayout{}
	}
	return items, nil
}

func parsePartnerID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, payoutdomain.ErrInvalidPartner
	}
	return id, nil
}
