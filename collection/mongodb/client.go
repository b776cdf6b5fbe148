package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/speedytwenty/mongodb-aggregate/collection"
	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/logger"
	"github.com/speedytwenty/mongodb-aggregate/observability"
	"github.com/speedytwenty/mongodb-aggregate/resilience"
)

// Client wraps a connected driver client scoped to one database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

var _ observability.HealthChecker = (*Client)(nil)

// Connect establishes a MongoDB connection with retry and verifies it with
// a ping. The context bounds the whole attempt sequence.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanConnect)
	defer span.End()

	timeout, _ := time.ParseDuration(cfg.ConnectTimeout)
	target := redactURI(cfg.URI)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cfg.AppName).
		SetConnectTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	retryCfg := resilience.RetryConfig{
		MaxAttempts:    cfg.MaxRetries,
		InitialBackoff: time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Warn("mongodb connection attempt failed, retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
				"backoff": backoff.String(),
			})
		},
	}

	client, err := resilience.Retry(ctx, retryCfg, func() (*mongo.Client, error) {
		c, err := mongo.Connect(opts)
		if err != nil {
			return nil, errors.ConnectionFailed(target).WithCause(err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(ctx)
			return nil, errors.ConnectionFailed(target).WithCause(err)
		}
		return c, nil
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	log.Info("mongodb connection established", map[string]interface{}{
		"target":   target,
		"database": cfg.Database,
	})

	return &Client{
		client: client,
		db:     client.Database(cfg.Database),
		log:    log,
		cfg:    cfg,
	}, nil
}

// Collection returns a provider executing against the named collection in
// the configured database.
func (c *Client) Collection(name string) collection.Provider {
	return &mongoCollection{coll: c.db.Collection(name)}
}

// Database returns the underlying driver database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// CheckHealth probes the deployment with a ping.
func (c *Client) CheckHealth(ctx context.Context) observability.Health {
	start := time.Now()
	if err := c.Ping(ctx); err != nil {
		return observability.Health{
			Name:    "mongodb",
			Status:  observability.HealthStatusDown,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return observability.Health{
		Name:   "mongodb",
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"database":   c.cfg.Database,
			"latency_ms": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
		},
	}
}

// Close disconnects the client. Safe to call multiple times.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.log.Info("closing mongodb connection")
	return c.client.Disconnect(ctx)
}

// redactURI strips credentials from a connection string for logs and
// error messages.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "mongodb"
	}
	u.User = nil
	return u.String()
}
