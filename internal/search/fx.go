package search

import (
	"github.com/stayhive/stayhive/internal/search/repository"
	"github.com/stayhive/stayhive/internal/search/service"
	"go.uber.org/fx"
)

var Module = fx.Module("search.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewMaintainer),
	fx.Provide(service.NewService),
)
