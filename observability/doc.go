// Package observability provides OpenTelemetry tracing and metrics helpers
// for aggregation instrumentation.
//
// The package is API-only: it never installs a tracer or meter provider.
// Spans and measurements are recorded when the embedding application has
// configured the OpenTelemetry SDK, and collapse to no-ops otherwise.
//
// Tracing:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanAggregate)
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-service"))
//	metrics.RecordAggregation(ctx, "orders", "ok", 4, duration)
//
// Health:
//
//	health := client.CheckHealth(ctx)
package observability
