package payment

import (
	"github.com/stayhive/stayhive/internal/payment/repository"
	"github.com/stayhive/stayhive/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
