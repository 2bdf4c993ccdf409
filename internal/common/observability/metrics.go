package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	updateCounter  otelmetric.Int64Counter
	updateDuration otelmetric.Float64Histogram
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	updateCounter, err := meter.Int64Counter(
		"updates.processed",
		otelmetric.WithDescription("Number of webhook updates processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create updates counter: %w", err)
	}

	updateDuration, err := meter.Float64Histogram(
		"updates.duration",
		otelmetric.WithDescription("Webhook update handling duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create updates histogram: %w", err)
	}

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		updateCounter:  updateCounter,
		updateDuration: updateDuration,
	}, nil
}

func (o *Observability) RecordUpdateProcessed(ctx context.Context, status string) {
	if o.updateCounter != nil {
		o.updateCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordUpdateDuration(ctx context.Context, duration time.Duration, status string) {
	if o.updateDuration != nil {
		o.updateDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
