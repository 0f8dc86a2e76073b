package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) payoutdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, payout *payoutdomain.CommissionPayout) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO commission_payouts (
			id, partner_id, period_start, period_end, commission_count, total_amount, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payout.ID,
		payout.PartnerID,
		payout.PeriodStart,
		payout.PeriodEnd,
		payout.CommissionCount,
		payout.TotalAmount,
		payout.Status,
		payout.CreatedAt,
		payout.UpdatedAt,
	).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*payoutdomain.CommissionPayout, error) {
	var item payoutdomain.CommissionPayout
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, partner_id, period_start, period_end, commission_count, total_amount, status, created_at, updated_at
		 FROM commission_payouts
		 WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) ListByPartner(ctx context.Context, partnerID snowflake.ID) ([]payoutdomain.CommissionPayout, error) {
	var items []payoutdomain.CommissionPayout
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, partner_id, period_start, period_end, commission_count, total_amount, status, created_at, updated_at
		 FROM commission_payouts
		 WHERE partner_id = ?
		 ORDER BY period_start DESC, id DESC`,
		partnerID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
