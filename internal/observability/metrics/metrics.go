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

// Metrics exposes commission engine instruments.
type Metrics struct {
	commissionsCreated   metric.Int64Counter
	commissionsSkipped   metric.Int64Counter
	commissionTransition metric.Int64Counter
	payoutsGenerated     metric.Int64Counter
	notifications        metric.Int64Counter
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
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)

	return provider, nil
}

// New configures the domain instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "partnerledger"
	}
	meter := provider.Meter(name)

	created, err := meter.Int64Counter("partnerledger_commission_created_total")
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("partnerledger_commission_skipped_total")
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("partnerledger_commission_transitions_total")
	if err != nil {
		return nil, err
	}
	payouts, err := meter.Int64Counter("partnerledger_payout_generated_total")
	if err != nil {
		return nil, err
	}
	notifications, err := meter.Int64Counter("partnerledger_commission_notifications_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		commissionsCreated:   created,
		commissionsSkipped:   skipped,
		commissionTransition: transitions,
		payoutsGenerated:     payouts,
		notifications:        notifications,
	}, nil
}

func (m *Metrics) RecordCommissionCreated(ctx context.Context, tripCategory string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("trip_category", strings.TrimSpace(tripCategory)))
	m.commissionsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCommissionSkipped counts "nothing to do" outcomes (no partner, no rate).
func (m *Metrics) RecordCommissionSkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.commissionsSkipped.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordCommissionTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("from_status", strings.TrimSpace(from)),
		attribute.String("to_status", strings.TrimSpace(to)),
	)
	m.commissionTransition.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordPayoutGenerated(ctx context.Context) {
	if m == nil {
		return
	}
	m.payoutsGenerated.Add(ctx, 1)
}

// RecordNotification counts delivery outcomes: queued, dropped, sent, failed.
func (m *Metrics) RecordNotification(ctx context.Context, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", strings.TrimSpace(result)))
	m.notifications.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Partner and booking identifiers are unbounded and never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"trip_category": {},
	"from_status":   {},
	"to_status":     {},
	"reason":        {},
	"result":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
