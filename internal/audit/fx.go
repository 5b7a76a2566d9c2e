package audit

import (
	"github.com/stayhive/stayhive/internal/audit/repository"
	"github.com/stayhive/stayhive/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
