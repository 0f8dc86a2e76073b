package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// CommissionPayload is the flat structure handed to the dispatcher when a
// commission is created.
type CommissionPayload struct {
	PartnerName            string `json:"partner_name"`
	BookingID              string `json:"booking_id"`
	TravelerName           string `json:"traveler_name,omitempty"`
	TripTitle              string `json:"trip_title,omitempty"`
	DepartureDate          string `json:"departure_date,omitempty"`
	TravelerCount          int    `json:"traveler_count,omitempty"`
	BookingAmount          string `json:"booking_amount"`
	CommissionRate         string `json:"commission_rate"`
	CommissionAmount       string `json:"commission_amount"`
	Currency               string `json:"currency"`
	TripCategory           string `json:"trip_category"`
	PendingCommissionCount int64  `json:"pending_commission_count"`
	PendingCommissionSum   string `json:"pending_commission_sum"`
}

// Message is one outbound notification. ID doubles as the delivery log key.
type Message struct {
	ID           string
	CommissionID snowflake.ID
	PartnerID    snowflake.ID
	To           string
	Subject      string
	Payload      CommissionPayload
}

func NewMessageID() string {
	return ulid.Make().String()
}

// DepartureDateLayout formats departure dates in notification payloads.
const DepartureDateLayout = "January 2, 2006"

type DeliveryRecord struct {
	ID           string         `gorm:"primaryKey;type:text" json:"id"`
	CommissionID snowflake.ID   `gorm:"not null;index" json:"commission_id"`
	PartnerID    snowflake.ID   `gorm:"not null" json:"partner_id"`
	Recipient    string         `gorm:"type:text;not null" json:"recipient"`
	Subject      string         `gorm:"type:text;not null" json:"subject"`
	Payload      datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	Status       string         `gorm:"type:text;not null" json:"status"`
	Error        *string        `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (DeliveryRecord) TableName() string { return "commission_notifications" }
