package query

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOne decodes the first match into result. A miss is reported as
// mongo.ErrNoDocuments.
func FindOne[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, result *T, opts ...*options.FindOneOptions) error {
	return collection.FindOne(ctx, filter, opts...).Decode(result)
}

func FindByID[T any](ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, result *T) error {
	return FindOne(ctx, collection, bson.M{"_id": id}, result)
}

// FindMany decodes every match into results. A nil result set is replaced
// with an empty slice so callers can serialise it as [].
func FindMany[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, results *[]T, opts ...*options.FindOptions) error {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return err
	}
	if *results == nil {
		*results = []T{}
	}
	return nil
}

// Sorted orders a Find by the given keys, 1 ascending and -1 descending.
func Sorted(keys ...bson.E) *options.FindOptions {
	return options.Find().SetSort(bson.D(keys))
}

func Count(ctx context.Context, collection *mongo.Collection, filter bson.M, opts ...*options.CountOptions) (int64, error) {
	return collection.CountDocuments(ctx, filter, opts...)
}

func Exists(ctx context.Context, collection *mongo.Collection, filter bson.M) (bool, error) {
	n, err := Count(ctx, collection, filter, options.Count().SetLimit(1))
	return n > 0, err
}
