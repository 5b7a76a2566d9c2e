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

// Config configures the meter provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	bookingTransitions metric.Int64Counter
	oversellRejections metric.Int64Counter
	searchQueries      metric.Int64Counter
	searchDuration     metric.Float64Histogram
	schedulerJobRuns   metric.Int64Counter
	schedulerJobErrors metric.Int64Counter
	schedulerJobTime   metric.Float64Histogram
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

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
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
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}

// New configures the domain metric instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "stayhive"
	}
	meter := provider.Meter(name)

	bookingTransitions, err := meter.Int64Counter("stayhive_booking_transitions_total")
	if err != nil {
		return nil, err
	}
	oversellRejections, err := meter.Int64Counter("stayhive_oversell_rejections_total")
	if err != nil {
		return nil, err
	}
	searchQueries, err := meter.Int64Counter("stayhive_search_queries_total")
	if err != nil {
		return nil, err
	}
	searchDuration, err := meter.Float64Histogram("stayhive_search_duration_ms")
	if err != nil {
		return nil, err
	}
	schedulerJobRuns, err := meter.Int64Counter("stayhive_scheduler_job_runs_total")
	if err != nil {
		return nil, err
	}
	schedulerJobErrors, err := meter.Int64Counter("stayhive_scheduler_job_errors_total")
	if err != nil {
		return nil, err
	}
	schedulerJobTime, err := meter.Float64Histogram("stayhive_scheduler_job_duration_ms")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		bookingTransitions: bookingTransitions,
		oversellRejections: oversellRejections,
		searchQueries:      searchQueries,
		searchDuration:     searchDuration,
		schedulerJobRuns:   schedulerJobRuns,
		schedulerJobErrors: schedulerJobErrors,
		schedulerJobTime:   schedulerJobTime,
	}, nil
}

// RecordBookingTransition counts one state-machine edge.
func (m *Metrics) RecordBookingTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.bookingTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordOversellRejection counts a confirmation rejected for lack of inventory.
func (m *Metrics) RecordOversellRejection(ctx context.Context) {
	if m == nil {
		return
	}
	m.oversellRejections.Add(ctx, 1)
}

// RecordSearchQuery counts one search and observes its latency.
func (m *Metrics) RecordSearchQuery(ctx context.Context, queryType string, cacheHit bool, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("type", queryType),
		attribute.Bool("cache_hit", cacheHit),
	)
	m.searchQueries.Add(ctx, 1, attrs)
	m.searchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordSchedulerJob counts one job run and observes its duration.
func (m *Metrics) RecordSchedulerJob(ctx context.Context, job string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("job", job))
	m.schedulerJobRuns.Add(ctx, 1, attrs)
	m.schedulerJobTime.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.schedulerJobErrors.Add(ctx, 1, attrs)
	}
}
