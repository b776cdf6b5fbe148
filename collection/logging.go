package collection

import (
	"context"
	"time"

	"github.com/speedytwenty/mongodb-aggregate/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// WithLogging returns a Middleware that logs each Aggregate call.
// Logs: collection name, stage count, duration, and success/error status.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Provider) Provider {
		return &loggingProvider{inner: inner, log: log}
	}
}

type loggingProvider struct {
	inner Provider
	log   *logger.Logger
}

func (l *loggingProvider) Name() string { return l.inner.Name() }

func (l *loggingProvider) Aggregate(ctx context.Context, stages []bson.D) (Cursor, error) {
	start := time.Now()
	cur, err := l.inner.Aggregate(ctx, stages)
	duration := time.Since(start)

	fields := map[string]interface{}{
		"collection": l.inner.Name(),
		"stages":     len(stages),
		"duration":   duration.String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.log.Error("aggregate failed", fields)
	} else {
		l.log.Debug("aggregate ok", fields)
	}

	return cur, err
}
