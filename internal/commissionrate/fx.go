package commissionrate

import (
	"github.com/smallbiznis/partnerledger/internal/commissionrate/repository"
	"github.com/smallbiznis/partnerledger/internal/commissionrate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commissionrate.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)
