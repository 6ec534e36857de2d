package mongo

import (
	"context"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/command"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityService stores the task audit trail.
type ActivityService struct {
	*MongoService
}

func NewActivityService(mongoService *MongoService) *ActivityService {
	return &ActivityService{MongoService: mongoService}
}

func (s *ActivityService) Insert(ctx context.Context, entry *models.ActivityLog) error {
	return storeErr("insert activity", command.Insert(ctx, s.GetCollection(activityCollection), entry))
}

// ListRecent returns entries about entityIDs or made by userID, newest first.
func (s *ActivityService) ListRecent(ctx context.Context, entityIDs []primitive.ObjectID, userID primitive.ObjectID, limit int) ([]*models.ActivityLog, error) {
	clauses := []bson.M{{"userId": userID}}
	if len(entityIDs) > 0 {
		clauses = append(clauses, bson.M{"entityId": bson.M{"$in": entityIDs}})
	}
	opts := query.Sorted(bson.E{Key: "timestamp", Value: -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	var logs []*models.ActivityLog
	filter := query.NewBuilder().Or(clauses...).Build()
	if err := query.FindMany(ctx, s.GetCollection(activityCollection), filter, &logs, opts); err != nil {
		return nil, storeErr("list activity", err)
	}
	return logs, nil
}

// MetricsService stores daily sprint burndown snapshots.
type MetricsService struct {
	*MongoService
}

func NewMetricsService(mongoService *MongoService) *MetricsService {
	return &MetricsService{MongoService: mongoService}
}

func (s *MetricsService) Insert(ctx context.Context, m *models.SprintMetrics) error {
	return storeErr("insert metrics", command.Insert(ctx, s.GetCollection(metricsCollection), m))
}

func (s *MetricsService) ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.SprintMetrics, error) {
	var out []*models.SprintMetrics
	opts := query.Sorted(bson.E{Key: "date", Value: 1})
	if err := query.FindMany(ctx, s.GetCollection(metricsCollection), bson.M{"sprintId": sprintID}, &out, opts); err != nil {
		return nil, storeErr("list metrics", err)
	}
	return out, nil
}
