package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ratedomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rate *ratedomain.CommissionRate) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO commission_rates (
			id, partner_id, trip_category, percentage, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rate.ID,
		rate.PartnerID,
		rate.TripCategory,
		rate.Percentage,
		rate.IsActive,
		rate.CreatedAt,
		rate.UpdatedAt,
	).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*ratedomain.CommissionRate, error) {
	var item ratedomain.CommissionRate
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, partner_id, trip_category, percentage, is_active, created_at, updated_at
		 FROM commission_rates
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

func (r *repository) FindActive(ctx context.Context, partnerID snowflake.ID, category tripcategory.Category) (*ratedomain.CommissionRate, error) {
	var item ratedomain.CommissionRate
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, partner_id, trip_category, percentage, is_active, created_at, updated_at
		 FROM commission_rates
		 WHERE partner_id = ? AND trip_category = ? AND is_active = true
		 ORDER BY id DESC
		 LIMIT 1`,
		partnerID,
		category,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) ListByPartner(ctx context.Context, partnerID snowflake.ID, activeOnly bool) ([]ratedomain.CommissionRate, error) {
	var items []ratedomain.CommissionRate
	stmt := r.db.WithContext(ctx).
		Model(&ratedomain.CommissionRate{}).
		Where("partner_id = ?", partnerID)
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}

	if err := stmt.Order("trip_category ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, rate *ratedomain.CommissionRate) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE commission_rates
		 SET percentage = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		rate.Percentage,
		rate.IsActive,
		rate.UpdatedAt,
		rate.ID,
	).Error
}
