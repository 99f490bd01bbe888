// Package telemetry provides helpers to initialize OpenTelemetry metrics and
// tracing with OTLP exporters over gRPC. It creates a unified Resource for the
// service, registers global providers and exposes a ShutdownFunc to flush and
// stop every pipeline that was started.
//
// Packages that emit telemetry obtain their instruments through Tracer and
// Meter, which read the global providers. Until Init registers real providers
// those are OpenTelemetry's no-op implementations, so instrumented code runs
// unchanged in tests and when telemetry is disabled.
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationPrefix namespaces tracers and meters created by this module.
const instrumentationPrefix = "github.com/gabapcia/walletfeed/"

// initMeterProvider sets up an OTLP gRPC MeterProvider using a
// periodic reader and the given Resource. It also registers the
// provider as the global MeterProvider.
func initMeterProvider(ctx context.Context, res *sdkresource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

// initTracerProvider sets up an OTLP gRPC TracerProvider using a
// batched exporter and the given Resource. It also registers the
// provider as the global TracerProvider.
func initTracerProvider(ctx context.Context, res *sdkresource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// newResource constructs an OpenTelemetry Resource by merging the default
// system resource with a ServiceName attribute for the given service.
func newResource(serviceName string) (*sdkresource.Resource, error) {
	return sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

// ShutdownFunc defines a callback to flush and stop all telemetry providers.
// Call this function at application shutdown to ensure all telemetry is sent.
type ShutdownFunc func(ctx context.Context) error

// config holds which signal pipelines Init starts.
type config struct {
	metrics bool
	traces  bool
}

// Option configures Init.
type Option func(*config)

// WithMetrics toggles the OTLP metrics pipeline. Default: enabled.
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		c.metrics = enabled
	}
}

// WithTraces toggles the OTLP traces pipeline. Default: enabled.
func WithTraces(enabled bool) Option {
	return func(c *config) {
		c.traces = enabled
	}
}

// Init configures OpenTelemetry metrics and traces using OTLP over gRPC and
// registers them as the global providers. Exporter endpoints are read by the
// OTLP exporters from the standard OTEL_EXPORTER_OTLP_* environment variables.
//
// The returned ShutdownFunc flushes and stops every provider that was started.
// If a pipeline fails to start, any provider already started is shut down
// before the error is returned.
func Init(ctx context.Context, serviceName string, opts ...Option) (ShutdownFunc, error) {
	cfg := config{metrics: true, traces: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := newResource(serviceName)
	if err != nil {
		return nil, err
	}

	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		errs := make([]error, 0, len(shutdowns))
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.metrics {
		mp, err := initMeterProvider(ctx, res)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	if cfg.traces {
		tp, err := initTracerProvider(ctx, res)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	return shutdown, nil
}

// Tracer returns a tracer from the global provider scoped to the given package name
// (e.g. "txhistory").
func Tracer(pkg string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + pkg)
}

// Meter returns a meter from the global provider scoped to the given package name.
func Meter(pkg string) metric.Meter {
	return otel.Meter(instrumentationPrefix + pkg)
}

// Counter creates an Int64Counter on meter. Instrument creation errors are
// reported by OpenTelemetry's global error handler and a no-op counter is
// returned in their place, so callers can always record.
func Counter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}

	return counter
}
