// Package telemetry wires up OpenTelemetry providers for the topicmux server.
// When telemetry is disabled, callers get no-op implementations so the rest
// of the code never has to check whether metrics are enabled.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config controls telemetry initialization.
type Config struct {
	ServiceName string
	Enabled     bool
}

// Providers bundles the OTel providers created at startup.
type Providers struct {
	Meter metric.Meter

	enabled       bool
	meterProvider *sdkmetric.MeterProvider
	traceProvider *sdktrace.TracerProvider
}

// Init creates the OTel providers. If telemetry is disabled, the returned
// Providers are inert and Shutdown is a no-op. Exporter endpoints are taken
// from the standard OTEL_EXPORTER_OTLP_* environment variables.
func Init(ctx context.Context, cfg *Config) (*Providers, error) {
	if !cfg.Enabled {
		return &Providers{enabled: false}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build otel resource: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp metric exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	otel.SetMeterProvider(meterProvider)

	traceExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp trace exporter: %w", err)
	}
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(traceProvider)

	return &Providers{
		Meter:         meterProvider.Meter(cfg.ServiceName),
		enabled:       true,
		meterProvider: meterProvider,
		traceProvider: traceProvider,
	}, nil
}

// IsEnabled reports whether real providers were created.
func (p *Providers) IsEnabled() bool {
	return p != nil && p.enabled
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	if err := p.traceProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown trace provider: %w", err)
	}
	return nil
}
