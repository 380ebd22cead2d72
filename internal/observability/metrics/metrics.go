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
	planRecomputes   metric.Int64Counter
	snapshotWrites   metric.Int64Counter
	pricingFallbacks metric.Int64Counter
	catalogFallbacks metric.Int64Counter
	submissions      metric.Int64Counter
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

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "sunplan"
	}
	meter := provider.Meter(name)

	planRecomputes, err := meter.Int64Counter("sunplan_plan_recomputes_total")
	if err != nil {
		return nil, err
	}
	snapshotWrites, err := meter.Int64Counter("sunplan_snapshot_writes_total")
	if err != nil {
		return nil, err
	}
	pricingFallbacks, err := meter.Int64Counter("sunplan_pricing_fallbacks_total")
	if err != nil {
		return nil, err
	}
	catalogFallbacks, err := meter.Int64Counter("sunplan_catalog_fallbacks_total")
	if err != nil {
		return nil, err
	}
	submissions, err := meter.Int64Counter("sunplan_quote_submissions_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		planRecomputes:   planRecomputes,
		snapshotWrites:   snapshotWrites,
		pricingFallbacks: pricingFallbacks,
		catalogFallbacks: catalogFallbacks,
		submissions:      submissions,
	}, nil
}

// RecordPlanRecompute increments plan recomputation counts.
func (m *Metrics) RecordPlanRecompute(ctx context.Context, brand, scenario string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("brand", strings.TrimSpace(brand)),
		attribute.String("scenario", strings.TrimSpace(scenario)),
	)
	m.planRecomputes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSnapshotWrite increments persisted snapshot counts.
func (m *Metrics) RecordSnapshotWrite(ctx context.Context, store string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("store", strings.TrimSpace(store)))
	m.snapshotWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPricingFallback counts slab lookups that resolved via a fallback
// rule. Pricing never errors on a missing tier, so this counter is the only
// signal that a brand's pricing tables have gaps.
func (m *Metrics) RecordPricingFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.pricingFallbacks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCatalogFallback counts remote catalog fetches that degraded to the
// seeded local catalog.
func (m *Metrics) RecordCatalogFallback(ctx context.Context, brand string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("brand", strings.TrimSpace(brand)))
	m.catalogFallbacks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSubmission increments quote submission counts.
func (m *Metrics) RecordSubmission(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.submissions.Add(ctx, 1, metric.WithAttributes(attrs...))
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

var allowedLabelKeys = map[attribute.Key]struct{}{
	"brand":       {},
	"scenario":    {},
	"store":       {},
	"reason":      {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
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
