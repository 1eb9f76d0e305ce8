package account

import (
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/account/repository"
	"github.com/contentry/ledger/internal/account/service"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
