package partner

import (
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"github.com/smallbiznis/partnerledger/internal/partner/repository"
	"github.com/smallbiznis/partnerledger/internal/partner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("partner.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(func(repo partnerdomain.Repository) partnerdomain.Lookup { return repo }),
	fx.Provide(service.NewSelector),
	fx.Provide(service.NewService),
)
