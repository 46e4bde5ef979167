package telemetry

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// StandardMetricNames contains common metric names used across services
type StandardMetricNames struct {
	RequestDuration    string
	RequestCount       string
	ErrorCount         string
	ProcessingDuration string
}

// NewStandardMetricNames creates a standardized set of metric names with
// service name prefix, snake_case with _total suffixes for counters to
// match Prometheus conventions
func NewStandardMetricNames(servicePrefix string) *StandardMetricNames {
	return &StandardMetricNames{
		RequestDuration:    fmt.Sprintf("patchdeck_%s_request_duration_seconds", servicePrefix),
		RequestCount:       fmt.Sprintf("patchdeck_%s_request_count_total", servicePrefix),
		ErrorCount:         fmt.Sprintf("patchdeck_%s_error_count_total", servicePrefix),
		ProcessingDuration: fmt.Sprintf("patchdeck_%s_processing_duration_seconds", servicePrefix),
	}
}

// MeterProvider wraps the OpenTelemetry MeterProvider
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
}

// InitMeter sets up the global meter provider with an OTLP gRPC exporter.
// When the collector is unreachable a provider without exporter is
// returned so services keep running.
func InitMeter(serviceName string, metricsEndpoint string) (*MeterProvider, error) {
	ctx := context.Background()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(metricsEndpoint),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithTimeout(10*time.Second),
	)
	if err != nil {
		log.Printf("Failed to create OTLP metrics exporter for %s, continuing without one: %v", metricsEndpoint, err)
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		return &MeterProvider{provider: mp}, nil
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(15*time.Second),
			),
		),
	)

	otel.SetMeterProvider(mp)

	log.Printf("OpenTelemetry metrics initialized for service: %s", serviceName)
	return &MeterProvider{provider: mp}, nil
}

// Meter returns a named meter for creating instruments
func (mp *MeterProvider) Meter(name string) metric.Meter {
	return mp.provider.Meter(name)
}

// Shutdown gracefully shuts down the meter provider
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	return mp.provider.Shutdown(ctx)
}

// ShutdownWithTimeout is a convenience method to shutdown the provider with a timeout
func (mp *MeterProvider) ShutdownWithTimeout(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := mp.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down meter provider: %v", err)
	}
}
