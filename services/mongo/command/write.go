package command

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoMatch is returned by writes that target one document when the
// filter selected nothing.
var ErrNoMatch = errors.New("no document matched")

// Insert stores document. Unique-index violations come back unchanged so
// the store can classify them.
func Insert[T any](ctx context.Context, collection *mongo.Collection, document T) error {
	_, err := collection.InsertOne(ctx, document)
	return err
}

// Replace overwrites the whole document stored under id.
func Replace[T any](ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, document T) error {
	res, err := collection.ReplaceOne(ctx, bson.M{"_id": id}, document)
	if err != nil {
		return err
	}
	return matchedOne(res)
}

// Apply runs an update document built with UpdateBuilder against id.
func Apply(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, update bson.M) error {
	res, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	return matchedOne(res)
}

// ApplyMany updates every match and returns how many documents changed.
func ApplyMany(ctx context.Context, collection *mongo.Collection, filter bson.M, update bson.M) (int, error) {
	res, err := collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

// Remove deletes the first match and reports whether anything was deleted.
func Remove(ctx context.Context, collection *mongo.Collection, filter bson.M) (bool, error) {
	res, err := collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func RemoveByID(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID) (bool, error) {
	return Remove(ctx, collection, bson.M{"_id": id})
}

func matchedOne(res *mongo.UpdateResult) error {
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}
