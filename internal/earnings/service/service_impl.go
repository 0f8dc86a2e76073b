package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	"github.com/smallbiznis/partnerledger/internal/config"
	earningsdomain "github.com/smallbiznis/partnerledger/internal/earnings/domain"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   commissiondomain.Repository
	Policy *config.CommissionConfigHolder `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   commissiondomain.Repository
	policy *config.CommissionConfigHolder
}

func NewService(p Params) earningsdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("earnings.service"),
		repo:   p.Repo,
		policy: p.Policy,
	}
}

func (s *Service) Summarize(ctx context.Context, partnerID string) (*earningsdomain.Summary, error) {
	id, err := parsePartnerID(partnerID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, id)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) ByTripCategory(ctx context.Context, partnerID string) ([]earningsdomain.CategoryEarnings, error) {
	id, err := parsePartnerID(partnerID)
	if err != nil {
		return nil, err
	}
	return s.byTripCategory(ctx, id)
}

func (s *Service) FullEarnings(ctx context.Context, partnerID string) (*earningsdomain.FullEarnings, error) {
	id, err := parsePartnerID(partnerID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, id)
	if err != nil {
		return nil, err
	}
	categories, err := s.byTripCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.List(ctx, s.db, commissiondomain.ListFilter{
		PartnerID:   id,
		Limit:       s.policy.Get().RecentLimit,
		NewestFirst: true,
	})
	if err != nil {
		return nil, err
	}

	full := &earningsdomain.FullEarnings{
		Summary:    summary,
		Categories: categories,
		Recent:     make([]earningsdomain.RecentCommission, 0, len(recent)),
	}
	for _, item := range recent {
		full.Recent = append(full.Recent, earningsdomain.RecentCommission{
			ID:               item.ID,
			BookingID:        item.BookingID,
			TripTitle:        item.TripTitle,
			TripCategory:     item.TripCategory,
			BookingAmount:    item.BookingAmount,
			CommissionAmount: item.CommissionAmount,
			Currency:         item.Currency,
			Status:           item.Status,
			CreatedAt:        item.CreatedAt,
		})
	}
	return full, nil
}

func (s *Service) summarize(ctx context.Context, partnerID snowflake.ID) (earningsdomain.Summary, error) {
	summary := earningsdomain.Summary{
		PartnerID:    partnerID,
		Pending:      earningsdomain.StatusTotal{Amount: decimal.Zero},
		Eligible:     earningsdomain.StatusTotal{Amount: decimal.Zero},
		Paid:         earningsdomain.StatusTotal{Amount: decimal.Zero},
		Voided:       earningsdomain.StatusTotal{Amount: decimal.Zero},
		TotalPayable: decimal.Zero,
	}

	rows, err := s.repo.TotalsByStatus(ctx, s.db, partnerID, nil)
	if err != nil {
		return summary, err
	}

	for _, row := range rows {
		var bucket *earningsdomain.StatusTotal
		switch row.Status {
		case commissiondomain.StatusPending:
			bucket = &summary.Pending
		case commissiondomain.StatusEligible:
			bucket = &summary.Eligible
		case commissiondomain.StatusPaid:
			bucket = &summary.Paid
		case commissiondomain.StatusVoided:
			bucket = &summary.Voided
		default:
			s.log.Warn("unknown commission status in totals", zap.String("status", string(row.Status)))
			continue
		}
		bucket.Count = row.CommissionCount
		bucket.Amount = row.CommissionAmount
	}

	summary.TotalPayable = summary.Pending.Amount.Add(summary.Eligible.Amount)
	return summary, nil
}

// byTripCategory returns the non-voided totals in reporting order. Categories
// without bookings are omitted.
func (s *Service) byTripCategory(ctx context.Context, partnerID snowflake.ID) ([]earningsdomain.CategoryEarnings, error) {
	rows, err := s.repo.TotalsByTripCategory(ctx, s.db, partnerID)
	if err != nil {
		return nil, err
	}

	totals := make(map[tripcategory.Category]commissiondomain.CategoryTotal, len(rows))
	for _, row := range rows {
		totals[row.TripCategory] = row
	}

	out := make([]earningsdomain.CategoryEarnings, 0, len(rows))
	for _, category := range tripcategory.All() {
		row, ok := totals[category]
		if !ok {
			continue
		}
		out = append(out, earningsdomain.CategoryEarnings{
			TripCategory:          category,
			BookingCount:          row.BookingCount,
			TotalBookingAmount:    row.BookingAmount,
			TotalCommissionAmount: row.CommissionAmount,
		})
	}
	return out, nil
}

func parsePartnerID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, earningsdomain.ErrInvalidPartner
	}
	return id, nil
}
