package booking

import (
	"github.com/stayhive/stayhive/internal/booking/repository"
	"github.com/stayhive/stayhive/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
