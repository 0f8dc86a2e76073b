package domain

import "context"

// Service aggregates commissions on read. An unknown partner yields empty
// aggregates rather than an error.
type Service interface {
	Summarize(ctx context.Context, partnerID string) (*Summary, error)
	ByTripCategory(ctx context.Context, partnerID string) ([]CategoryEarnings, error)
	FullEarnings(ctx context.Context, partnerID string) (*FullEarnings, error)
}
