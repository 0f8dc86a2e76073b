package domain

import (
	"context"
	"time"
)

// Service builds payout batches on demand. An empty selection returns a nil
// payout without an error and persists nothing.
type Service interface {
	GeneratePayout(ctx context.Context, req GenerateRequest) (*CommissionPayout, error)
	Get(ctx context.Context, id string) (*CommissionPayout, error)
	List(ctx context.Context, partnerID string) ([]CommissionPayout, error)
}

type GenerateRequest struct {
	PartnerID   string    `json:"partner_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// RunLocker serialises payout runs for one partner across processes.
type RunLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}
