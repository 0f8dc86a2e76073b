package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service owns commission creation and lifecycle. Soft outcomes (no credit
// partner, no applicable rate, no commission for a booking) return nil
// without an error.
type Service interface {
	CreateCommission(ctx context.Context, req CreateRequest) (*Commission, error)
	Transition(ctx context.Context, bookingID string, target Status) (*Commission, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (*Commission, error)

	Get(ctx context.Context, id string) (*Commission, error)
	GetByBookingID(ctx context.Context, bookingID string) (*Commission, error)
	List(ctx context.Context, req ListRequest) ([]Commission, error)
	History(ctx context.Context, id string) ([]StatusEvent, error)
}

type CreateRequest struct {
	BookingID     string          `json:"booking_id"`
	BookingAmount decimal.Decimal `json:"booking_amount"`
	TripCategory  string          `json:"trip_category"`
	Currency      string          `json:"currency"`
	ReferralCode  string          `json:"referral_code"`
	Booking       BookingDetails  `json:"booking"`
}

// BookingDetails feed the partner notification and the trip title snapshot.
type BookingDetails struct {
	TravelerName  string     `json:"traveler_name"`
	TripTitle     string     `json:"trip_title"`
	DepartureDate *time.Time `json:"departure_date"`
	TravelerCount int        `json:"traveler_count"`
}

type MarkPaidRequest struct {
	ID               string  `json:"id"`
	PaymentReference *string `json:"payment_reference"`
}

type ListRequest struct {
	PartnerID string
	Status    string
}
