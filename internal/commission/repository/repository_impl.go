package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() commissiondomain.Repository {
	return &repo{}
}

const commissionColumns = `id, partner_id, booking_id, booking_amount, commission_rate, commission_amount,
	currency, trip_category, trip_title, status, paid_at, payment_reference, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *commissiondomain.Commission) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO commissions (`+commissionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.PartnerID,
		c.BookingID,
		c.BookingAmount,
		c.CommissionRate,
		c.CommissionAmount,
		c.Currency,
		c.TripCategory,
		c.TripTitle,
		c.Status,
		c.PaidAt,
		c.PaymentReference,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) InsertStatusEvent(ctx context.Context, db *gorm.DB, event *commissiondomain.StatusEvent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO commission_status_events (
			id, commission_id, from_status, to_status, actor, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.CommissionID,
		event.FromStatus,
		event.ToStatus,
		event.Actor,
		event.OccurredAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*commissiondomain.Commission, error) {
	var item commissiondomain.Commission
	err := db.WithContext(ctx).Raw(
		`SELECT `+commissionColumns+` FROM commissions WHERE id = ?`,
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

func (r *repo) FindByBookingID(ctx context.Context, db *gorm.DB, bookingID string) (*commissiondomain.Commission, error) {
	var item commissiondomain.Commission
	err := db.WithContext(ctx).Raw(
		`SELECT `+commissionColumns+` FROM commissions WHERE booking_id = ? LIMIT 1`,
		bookingID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, update commissiondomain.StatusUpdate) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE commissions
		 SET status = ?, paid_at = COALESCE(?, paid_at), payment_reference = COALESCE(?, payment_reference), updated_at = ?
		 WHERE id = ? AND status = ?`,
		update.To,
		update.PaidAt,
		update.PaymentReference,
		update.UpdatedAt,
		update.ID,
		update.From,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter commissiondomain.ListFilter) ([]commissiondomain.Commission, error) {
	var items []commissiondomain.Commission
	stmt := db.WithContext(ctx).Model(&commissiondomain.Commission{})

	if filter.PartnerID != 0 {
		stmt = stmt.Where("partner_id = ?", filter.PartnerID)
	}
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("status IN ?", filter.Statuses)
	}
	if filter.NewestFirst {
		stmt = stmt.Order("created_at DESC").Order("id DESC")
	} else {
		stmt = stmt.Order("created_at ASC").Order("id ASC")
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListStatusEvents(ctx context.Context, db *gorm.DB, commissionID snowflake.ID) ([]commissiondomain.StatusEvent, error) {
	var items []commissiondomain.StatusEvent
	err := db.WithContext(ctx).Raw(
		`SELECT id, commission_id, from_status, to_status, actor, occurred_at
		 FROM commission_status_events
		 WHERE commission_id = ?
		 ORDER BY occurred_at ASC, id ASC`,
		commissionID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListEligibleInWindow(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, start, end time.Time) ([]commissiondomain.Commission, error) {
	var items []commissiondomain.Commission
	err := db.WithContext(ctx).Raw(
		`SELECT `+commissionColumns+`
		 FROM commissions
		 WHERE partner_id = ? AND status = ? AND created_at >= ? AND created_at <= ?
		 ORDER BY created_at ASC, id ASC`,
		partnerID,
		commissiondomain.StatusEligible,
		start,
		end,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) TotalsByStatus(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, statuses []commissiondomain.Status) ([]commissiondomain.StatusTotal, error) {
	query := `SELECT status, COUNT(*) AS commission_count, SUM(commission_amount) AS commission_amount
		 FROM commissions
		 WHERE partner_id = ?`
	args := []any{partnerID}
	if len(statuses) > 0 {
		query += ` AND status IN ?`
		args = append(args, statuses)
	}
	query += ` GROUP BY status`

	var rows []commissiondomain.StatusTotal
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) TotalsByTripCategory(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]commissiondomain.CategoryTotal, error) {
	var rows []commissiondomain.CategoryTotal
	err := db.WithContext(ctx).Raw(
		`SELECT trip_category,
			COUNT(*) AS booking_count,
			SUM(booking_amount) AS booking_amount,
			SUM(commission_amount) AS commission_amount
		 FROM commissions
		 WHERE partner_id = ? AND status <> ?
		 GROUP BY trip_category`,
		partnerID,
		commissiondomain.StatusVoided,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
