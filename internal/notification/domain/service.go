package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Dispatcher accepts messages without waiting for delivery. Enqueue reports
// false when the message was dropped.
type Dispatcher interface {
	Enqueue(ctx context.Context, msg Message) bool
}

type Repository interface {
	Insert(ctx context.Context, record *DeliveryRecord) error
	ListByCommission(ctx context.Context, commissionID snowflake.ID) ([]DeliveryRecord, error)
}
