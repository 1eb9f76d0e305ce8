// Package metrics exposes the ledger's OpenTelemetry instruments.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoicesIssued  metric.Int64Counter
	paymentOutcomes metric.Int64Counter
	paymentsMatched metric.Int64Counter
	transferResults metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

func newExporter(protocol string, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported metrics exporter protocol %q", protocol)
	}
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "contentry-ledger"
	}
	meter := provider.Meter(name)

	invoicesIssued, err := meter.Int64Counter("ledger_invoices_issued_total")
	if err != nil {
		return nil, err
	}
	paymentOutcomes, err := meter.Int64Counter("ledger_payment_outcomes_total")
	if err != nil {
		return nil, err
	}
	paymentsMatched, err := meter.Int64Counter("ledger_payments_matched_total")
	if err != nil {
		return nil, err
	}
	transferResults, err := meter.Int64Counter("ledger_transfer_results_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesIssued:  invoicesIssued,
		paymentOutcomes: paymentOutcomes,
		paymentsMatched: paymentsMatched,
		transferResults: transferResults,
	}, nil
}

func (m *Metrics) RecordInvoiceIssued(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	m.invoicesIssued.Add(ctx, 1, metric.WithAttributes(
		attribute.String("currency", currency),
	))
}

func (m *Metrics) RecordPaymentOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.paymentOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordPaymentMatched(ctx context.Context, invoiceStatus string) {
	if m == nil {
		return
	}
	m.paymentsMatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("invoice_status", invoiceStatus),
	))
}

func (m *Metrics) RecordTransferOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.transferResults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
