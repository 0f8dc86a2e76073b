package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/partnerledger/internal/tripcategory"
	"gorm.io/gorm"
)

// Repository is stateless; callers pass the *gorm.DB (or transaction) to use.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, commission *Commission) error
	InsertStatusEvent(ctx context.Context, db *gorm.DB, event *StatusEvent) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Commission, error)
	FindByBookingID(ctx context.Context, db *gorm.DB, bookingID string) (*Commission, error)
	// UpdateStatus applies the change only while the row is still in from.
	UpdateStatus(ctx context.Context, db *gorm.DB, update StatusUpdate) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Commission, error)
	ListStatusEvents(ctx context.Context, db *gorm.DB, commissionID snowflake.ID) ([]StatusEvent, error)
	ListEligibleInWindow(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, start, end time.Time) ([]Commission, error)
	// TotalsByStatus groups a partner's commissions by status. An empty
	// statuses slice means every status. Statuses without rows are absent.
	TotalsByStatus(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, statuses []Status) ([]StatusTotal, error)
	// TotalsByTripCategory groups a partner's non-voided commissions by
	// trip category.
	TotalsByTripCategory(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]CategoryTotal, error)
}

type StatusTotal struct {
	Status           Status          `gorm:"column:status"`
	CommissionCount  int64           `gorm:"column:commission_count"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount"`
}

type CategoryTotal struct {
	TripCategory     tripcategory.Category `gorm:"column:trip_category"`
	BookingCount     int64                 `gorm:"column:booking_count"`
	BookingAmount    decimal.Decimal       `gorm:"column:booking_amount"`
	CommissionAmount decimal.Decimal       `gorm:"column:commission_amount"`
}

type StatusUpdate struct {
	ID               snowflake.ID
	From             Status
	To               Status
	PaidAt           *time.Time
	PaymentReference *string
	UpdatedAt        time.Time
}

type ListFilter struct {
	PartnerID   snowflake.ID
	Statuses    []Status
	Limit       int
	NewestFirst bool
}
