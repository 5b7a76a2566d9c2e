package hotel

import (
	"github.com/stayhive/stayhive/internal/hotel/repository"
	"github.com/stayhive/stayhive/internal/hotel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("hotel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
