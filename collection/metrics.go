package collection

import (
	"context"
	"time"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// WithMetrics returns a Middleware that records each Aggregate call on the
// observability.Metrics instruments: run count, duration histogram, stage
// count, and errors by code.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(inner Provider) Provider {
		return &metricsProvider{inner: inner, metrics: metrics}
	}
}

type metricsProvider struct {
	inner   Provider
	metrics *observability.Metrics
}

func (m *metricsProvider) Name() string { return m.inner.Name() }

func (m *metricsProvider) Aggregate(ctx context.Context, stages []bson.D) (Cursor, error) {
	start := time.Now()
	cur, err := m.inner.Aggregate(ctx, stages)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		m.metrics.RecordError(ctx, string(code), m.inner.Name())
	}
	m.metrics.RecordAggregation(ctx, m.inner.Name(), status, len(stages), duration)

	return cur, err
}
