package stripe

import (
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/payment/adapters"
)

func provideFactory() adapters.Factory {
	return NewFactory()
}

var Module = fx.Module("gateway.stripe",
	fx.Provide(provideFactory),
)
