package commission

import (
	"github.com/stayhive/stayhive/internal/commission/repository"
	"github.com/stayhive/stayhive/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
