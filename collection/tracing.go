package collection

import (
	"context"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// WithTracing returns a Middleware that creates an OpenTelemetry span
// around each Aggregate call. Spans record the collection name, stage
// count, and on failure the error code.
func WithTracing() Middleware {
	return func(inner Provider) Provider {
		return &tracingProvider{inner: inner}
	}
}

type tracingProvider struct {
	inner Provider
}

func (t *tracingProvider) Name() string { return t.inner.Name() }

func (t *tracingProvider) Aggregate(ctx context.Context, stages []bson.D) (Cursor, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanAggregate)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrCollection, t.inner.Name())
	observability.SetSpanAttribute(ctx, observability.AttrStageCount, len(stages))

	cur, err := t.inner.Aggregate(ctx, stages)
	if err != nil {
		observability.SetSpanError(ctx, err)
		if code := errors.CodeOf(err); code != "" {
			observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(code))
		}
	}

	return cur, err
}
