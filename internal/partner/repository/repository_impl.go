package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) partnerdomain.Repository {
	return &repository{db: db}
}

const partnerColumns = `id, name, category, email, referral_code, is_active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, partner *partnerdomain.Partner) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO partners (`+partnerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		partner.ID,
		partner.Name,
		partner.Category,
		partner.Email,
		partner.ReferralCode,
		partner.IsActive,
		partner.CreatedAt,
		partner.UpdatedAt,
	).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*partnerdomain.Partner, error) {
	var item partnerdomain.Partner
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+partnerColumns+` FROM partners WHERE id = ?`,
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

func (r *repository) FindActiveByReferralCode(ctx context.Context, code string) (*partnerdomain.Partner, error) {
	var item partnerdomain.Partner
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+partnerColumns+`
		 FROM partners
		 WHERE referral_code = ? AND is_active = true
		 LIMIT 1`,
		code,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) FirstActiveByCategory(ctx context.Context, category partnerdomain.Category) (*partnerdomain.Partner, error) {
	var item partnerdomain.Partner
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+partnerColumns+`
		 FROM partners
		 WHERE category = ? AND is_active = true
		 ORDER BY id ASC
		 LIMIT 1`,
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

func (r *repository) List(ctx context.Context, filter partnerdomain.ListRequest) ([]partnerdomain.Partner, error) {
	var items []partnerdomain.Partner
	stmt := r.db.WithContext(ctx).Model(&partnerdomain.Partner{})

	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}

	if err := stmt.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, partner *partnerdomain.Partner) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE partners
		 SET name = ?, category = ?, email = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		partner.Name,
		partner.Category,
		partner.Email,
		partner.IsActive,
		partner.UpdatedAt,
		partner.ID,
	).Error
}
