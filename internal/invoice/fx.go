package invoice

import (
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/invoice/repository"
	"github.com/contentry/ledger/internal/invoice/service"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
