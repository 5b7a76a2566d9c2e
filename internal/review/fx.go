package review

import (
	"github.com/stayhive/stayhive/internal/review/repository"
	"github.com/stayhive/stayhive/internal/review/service"
	"go.uber.org/fx"
)

var Module = fx.Module("review.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
