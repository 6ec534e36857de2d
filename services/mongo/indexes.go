package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexModels() map[string][]mongo.IndexModel {
	asc := func(keys ...string) bson.D {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return d
	}
	return map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: asc("email"), Options: options.Index().SetUnique(true)},
		},
		projectsCollection: {
			{Keys: asc("key"), Options: options.Index().SetUnique(true)},
			{Keys: asc("teamMembers")},
		},
		sprintsCollection: {
			{Keys: asc("projectId", "status")},
			{Keys: bson.D{{Key: "startDate", Value: -1}}},
		},
		tasksCollection: {
			{Keys: asc("projectId", "sprintId")},
			{Keys: asc("assigneeId", "status")},
		},
		submissionsCollection: {
			{Keys: asc("sprintId", "userId"), Options: options.Index().SetUnique(true)},
			{Keys: asc("userId")},
		},
		metricsCollection: {
			{Keys: asc("sprintId", "date")},
		},
		activityCollection: {
			{Keys: asc("entityId")},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}
}

// EnsureIndexes creates the indexes every store relies on, including the
// unique (sprintId, userId) index on submissions. It is idempotent.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	for name, idx := range indexModels() {
		if _, err := s.GetCollection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
