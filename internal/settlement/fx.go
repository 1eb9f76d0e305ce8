package settlement

import (
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/settlement/repository"
	"github.com/contentry/ledger/internal/settlement/service"
)

var Module = fx.Module("settlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
