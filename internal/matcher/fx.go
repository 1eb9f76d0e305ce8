package matcher

import (
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/matcher/repository"
	"github.com/contentry/ledger/internal/matcher/service"
)

var Module = fx.Module("matcher.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
