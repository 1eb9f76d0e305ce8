package adapters

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/contentry/ledger/internal/config"
	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

type GatewayParams struct {
	fx.In

	Config   config.Config
	Registry *Registry
	Logger   *zap.Logger
}

type GatewayResult struct {
	fx.Out

	PaymentGateway  paymentdomain.Gateway
	TransferGateway settlementdomain.Gateway
}

// NewGateways builds both gateway roles from the configured provider.
func NewGateways(p GatewayParams) (GatewayResult, error) {
	provider := p.Config.Gateway.Provider
	paymentGateway, transferGateway, err := p.Registry.NewGateways(provider, Config{
		SecretKey: p.Config.Gateway.SecretKey,
		BaseURL:   p.Config.Gateway.BaseURL,
		Timeout:   p.Config.Gateway.Timeout,
	})
	if err != nil {
		p.Logger.Error("failed to build payment gateways",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return GatewayResult{}, err
	}
	p.Logger.Info("payment gateways ready", zap.String("provider", provider))
	return GatewayResult{
		PaymentGateway:  paymentGateway,
		TransferGateway: transferGateway,
	}, nil
}

func newRegistry(factory Factory) *Registry {
	return NewRegistry(factory)
}

var Module = fx.Module("gateway",
	fx.Provide(newRegistry),
	fx.Provide(NewGateways),
)
