package payment

import (
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/payment/repository"
	"github.com/contentry/ledger/internal/payment/service"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
