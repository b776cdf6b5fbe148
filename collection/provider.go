package collection

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Provider executes aggregation pipelines against a named collection.
// Implementations own transport concerns; the pipeline and template layers
// never open connections or manage pools.
type Provider interface {
	// Name returns the backing collection name.
	Name() string
	// Aggregate submits fully built stage documents and returns a cursor
	// over the result set.
	Aggregate(ctx context.Context, stages []bson.D) (Cursor, error)
}

// Cursor mirrors the driver cursor surface so results stream through the
// same interface regardless of backend.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(v any) error
	All(ctx context.Context, results any) error
	Close(ctx context.Context) error
	Err() error
}
