package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Metrics holds the swap engine's instruments. A nil *Metrics (metrics
// disabled) is safe to call.
type Metrics struct {
	meter metric.Meter

	QuoteDuration    metric.Float64Histogram
	QuotesTotal      metric.Int64Counter
	SwapsSubmitted   metric.Int64Counter
	SettlementsTotal metric.Int64Counter
	PendingSwaps     metric.Int64Gauge

	IndexRefreshDuration metric.Float64Histogram
	IndexPairs           metric.Int64Gauge

	RPCEndpointHealth   metric.Int64Gauge
	CacheHits           metric.Int64Counter
	CacheMisses         metric.Int64Counter
	CircuitBreakerState metric.Int64Gauge
	PublishDuration     metric.Float64Histogram
	Errors              metric.Int64Counter

	exporter *prometheus.Exporter
}

// NewMetrics creates the instrument set backed by a Prometheus exporter.
// Returns nil when disabled.
func NewMetrics(serviceName string, enabled bool) (*Metrics, error) {
	if !enabled {
		return nil, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	m := &Metrics{meter: meter, exporter: exporter}

	if m.QuoteDuration, err = meter.Float64Histogram("swap_quote_duration_seconds",
		metric.WithDescription("Time to compute a reserve-based quote")); err != nil {
		return nil, err
	}
	if m.QuotesTotal, err = meter.Int64Counter("swap_quotes_total",
		metric.WithDescription("Quotes computed, by result")); err != nil {
		return nil, err
	}
	if m.SwapsSubmitted, err = meter.Int64Counter("swap_submissions_total",
		metric.WithDescription("Write calls submitted, by kind")); err != nil {
		return nil, err
	}
	if m.SettlementsTotal, err = meter.Int64Counter("swap_settlements_total",
		metric.WithDescription("Settlement resolutions, by outcome")); err != nil {
		return nil, err
	}
	if m.PendingSwaps, err = meter.Int64Gauge("swap_pending",
		metric.WithDescription("Transactions currently awaiting settlement")); err != nil {
		return nil, err
	}
	if m.IndexRefreshDuration, err = meter.Float64Histogram("index_refresh_duration_seconds",
		metric.WithDescription("Time to refresh the pair index")); err != nil {
		return nil, err
	}
	if m.IndexPairs, err = meter.Int64Gauge("index_pairs",
		metric.WithDescription("Pairs in the current index snapshot")); err != nil {
		return nil, err
	}
	if m.RPCEndpointHealth, err = meter.Int64Gauge("rpc_endpoint_healthy",
		metric.WithDescription("RPC endpoint health (1 healthy, 0 unhealthy)")); err != nil {
		return nil, err
	}
	if m.CacheHits, err = meter.Int64Counter("cache_hits_total"); err != nil {
		return nil, err
	}
	if m.CacheMisses, err = meter.Int64Counter("cache_misses_total"); err != nil {
		return nil, err
	}
	if m.CircuitBreakerState, err = meter.Int64Gauge("circuit_breaker_state",
		metric.WithDescription("0 closed, 1 open, 2 half-open")); err != nil {
		return nil, err
	}
	if m.PublishDuration, err = meter.Float64Histogram("notification_publish_duration_seconds",
		metric.WithDescription("Time to publish a settlement notification")); err != nil {
		return nil, err
	}
	if m.Errors, err = meter.Int64Counter("errors_total",
		metric.WithDescription("Errors, by component")); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler exposes the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordQuote(ctx context.Context, d time.Duration, success bool) {
	if m == nil {
		return
	}
	m.QuoteDuration.Record(ctx, d.Seconds())
	m.QuotesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

func (m *Metrics) RecordSwapSubmitted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.SwapsSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordSettlement(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.SettlementsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) SetPendingSwaps(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.PendingSwaps.Record(ctx, n)
}

func (m *Metrics) RecordIndexRefresh(ctx context.Context, pairs int, d time.Duration) {
	if m == nil {
		return
	}
	m.IndexRefreshDuration.Record(ctx, d.Seconds())
	m.IndexPairs.Record(ctx, int64(pairs))
}

func (m *Metrics) RecordRPCEndpointHealth(ctx context.Context, url string, healthy bool) {
	if m == nil {
		return
	}
	v := int64(0)
	if healthy {
		v = 1
	}
	m.RPCEndpointHealth.Record(ctx, v, metric.WithAttributes(attribute.String("url", url)))
}

func (m *Metrics) RecordCacheHit(ctx context.Context, layer string) {
	if m == nil {
		return
	}
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("layer", layer)))
}

func (m *Metrics) RecordCacheMiss(ctx context.Context, layer string) {
	if m == nil {
		return
	}
	m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("layer", layer)))
}

func (m *Metrics) SetCircuitBreakerState(ctx context.Context, name string, state int64) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.Record(ctx, state, metric.WithAttributes(attribute.String("name", name)))
}

func (m *Metrics) RecordPublish(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.PublishDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordError(ctx context.Context, component string) {
	if m == nil {
		return
	}
	m.Errors.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}
