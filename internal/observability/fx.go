package observability

import (
	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/config"
	"github.com/contentry/ledger/internal/observability/metrics"
)

func newMetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.Metrics.Enabled,
		ExporterEndpoint: cfg.Metrics.Endpoint,
		ExporterProtocol: cfg.Metrics.Exporter,
		ServiceName:      cfg.AppName,
		Environment:      cfg.Environment,
	}
}

var Module = fx.Module("observability",
	fx.Provide(newMetricsConfig),
	fx.Provide(metrics.NewProvider),
	fx.Provide(metrics.New),
)
