package notification

import (
	"context"

	notificationdomain "github.com/smallbiznis/partnerledger/internal/notification/domain"
	"github.com/smallbiznis/partnerledger/internal/notification/email"
	"github.com/smallbiznis/partnerledger/internal/notification/repository"
	"github.com/smallbiznis/partnerledger/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	email.Module,
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewDispatcher),
	fx.Provide(func(d *service.Dispatcher) notificationdomain.Dispatcher { return d }),
	fx.Invoke(registerDispatcher),
)

func registerDispatcher(lc fx.Lifecycle, d *service.Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Start()
			return nil
		},
		OnStop: d.Stop,
	})
}
