package payout

import (
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
	"github.com/smallbiznis/partnerledger/internal/payout/repository"
	"github.com/smallbiznis/partnerledger/internal/payout/service"
	"github.com/smallbiznis/partnerledger/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(provideRunLocker),
	fx.Provide(service.NewService),
)

// provideRunLocker keeps a missing redis locker a nil interface.
func provideRunLocker(locker *ratelimit.Locker) payoutdomain.RunLocker {
	if locker == nil {
		return nil
	}
	return locker
}
