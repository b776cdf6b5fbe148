package collection

import (
	"context"

	"github.com/speedytwenty/mongodb-aggregate/resilience"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// WithRetry returns a Middleware that retries failed Aggregate calls under
// the given retry policy. With a zero RetryIf the policy retries only
// errors carrying a retryable code, so validation and lookup failures
// surface immediately.
func WithRetry(cfg resilience.RetryConfig) Middleware {
	return func(inner Provider) Provider {
		return &retryProvider{inner: inner, cfg: cfg}
	}
}

type retryProvider struct {
	inner Provider
	cfg   resilience.RetryConfig
}

func (r *retryProvider) Name() string { return r.inner.Name() }

func (r *retryProvider) Aggregate(ctx context.Context, stages []bson.D) (Cursor, error) {
	return resilience.Retry(ctx, r.cfg, func() (Cursor, error) {
		return r.inner.Aggregate(ctx, stages)
	})
}
