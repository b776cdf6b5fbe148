package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/speedytwenty/mongodb-aggregate/collection"
	"github.com/speedytwenty/mongodb-aggregate/errors"
)

// mongoCollection adapts a driver collection to the provider contract.
type mongoCollection struct {
	coll *mongo.Collection
}

var _ collection.Provider = (*mongoCollection)(nil)

// The driver cursor satisfies the cursor contract as-is.
var _ collection.Cursor = (*mongo.Cursor)(nil)

// Name returns the collection name.
func (m *mongoCollection) Name() string { return m.coll.Name() }

// Aggregate submits the stage documents to the server.
func (m *mongoCollection) Aggregate(ctx context.Context, stages []bson.D) (collection.Cursor, error) {
	cur, err := m.coll.Aggregate(ctx, mongo.Pipeline(stages))
	if err != nil {
		return nil, errors.ExecutionFailed(m.coll.Name(), err)
	}
	return cur, nil
}
