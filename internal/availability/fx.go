package availability

import (
	"github.com/stayhive/stayhive/internal/availability/repository"
	"github.com/stayhive/stayhive/internal/availability/service"
	"go.uber.org/fx"
)

var Module = fx.Module("availability.ledger",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewLedger),
)
