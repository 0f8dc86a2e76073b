package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/smallbiznis/partnerledger/internal/notification/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) notificationdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, record *notificationdomain.DeliveryRecord) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO commission_notifications (
			id, commission_id, partner_id, recipient, subject, payload, status, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.CommissionID,
		record.PartnerID,
		record.Recipient,
		record.Subject,
		record.Payload,
		record.Status,
		record.Error,
		record.CreatedAt,
	).Error
}

func (r *repository) ListByCommission(ctx context.Context, commissionID snowflake.ID) ([]notificationdomain.DeliveryRecord, error) {
	var items []notificationdomain.DeliveryRecord
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, commission_id, partner_id, recipient, subject, payload, status, error, created_at
		 FROM commission_notifications
		 WHERE commission_id = ?
		 ORDER BY created_at ASC, id ASC`,
		commissionID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
