package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for aggregation observability.
type Metrics struct {
	aggregationTotal    metric.Int64Counter
	aggregationDuration metric.Float64Histogram
	pipelineStages      metric.Int64Histogram
	errorTotal          metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	aggregationTotal, err := meter.Int64Counter("aggregation.total",
		metric.WithDescription("Total number of aggregation runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregation.total counter: %w", err)
	}

	aggregationDuration, err := meter.Float64Histogram("aggregation.duration",
		metric.WithDescription("Duration of aggregation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregation.duration histogram: %w", err)
	}

	pipelineStages, err := meter.Int64Histogram("aggregation.stages",
		metric.WithDescription("Number of stages submitted per aggregation run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aggregation.stages histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		aggregationTotal:    aggregationTotal,
		aggregationDuration: aggregationDuration,
		pipelineStages:      pipelineStages,
		errorTotal:          errorTotal,
	}, nil
}

// RecordAggregation records one aggregation run against a collection.
func (m *Metrics) RecordAggregation(ctx context.Context, collection, status string, stages int, duration time.Duration) {
	m.aggregationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("status", status),
	))
	collAttr := metric.WithAttributes(attribute.String("collection", collection))
	m.aggregationDuration.Record(ctx, duration.Seconds(), collAttr)
	m.pipelineStages.Record(ctx, int64(stages), collAttr)
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
