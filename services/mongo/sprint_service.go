package mongo

import (
	"context"
	"errors"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/command"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/query"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SprintService struct {
	*MongoService
}

func NewSprintService(mongoService *MongoService) *SprintService {
	return &SprintService{MongoService: mongoService}
}

func (s *SprintService) collection() *mongo.Collection {
	return s.GetCollection(sprintsCollection)
}

func (s *SprintService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := query.FindByID(ctx, s.collection(), id, &sprint); err != nil {
		return nil, storeErr("find sprint", err)
	}
	return &sprint, nil
}

// ListByProject returns the project's sprints, latest number first.
func (s *SprintService) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*models.Sprint, error) {
	return s.list(ctx, bson.M{"projectId": projectID}, query.Sorted(bson.E{Key: "sprintNumber", Value: -1}))
}

func (s *SprintService) ListActiveByProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]*models.Sprint, error) {
	filter := query.NewBuilder().
		WhereIn("projectId", projectIDs).
		Where("status", models.SprintStatusActive).
		Build()
	return s.list(ctx, filter, query.Sorted(bson.E{Key: "endDate", Value: 1}))
}

// ListCompleted returns at most limit completed sprints, most recently
// completed first.
func (s *SprintService) ListCompleted(ctx context.Context, projectID primitive.ObjectID, limit int) ([]*models.Sprint, error) {
	opts := query.Sorted(bson.E{Key: "completedAt", Value: -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.list(ctx, bson.M{"projectId": projectID, "status": models.SprintStatusCompleted}, opts)
}

func (s *SprintService) HasOtherActive(ctx context.Context, projectID, excludeID primitive.ObjectID) (bool, error) {
	filter := query.NewBuilder().
		Where("projectId", projectID).
		Where("status", models.SprintStatusActive).
		WhereNe("_id", excludeID).
		Build()
	ok, err := query.Exists(ctx, s.collection(), filter)
	if err != nil {
		return false, storeErr("count sprints", err)
	}
	return ok, nil
}

// LastSprintNumber returns the highest sprint number in the project, or 0.
func (s *SprintService) LastSprintNumber(ctx context.Context, projectID primitive.ObjectID) (int, error) {
	var last models.Sprint
	opts := options.FindOne().SetSort(bson.D{{Key: "sprintNumber", Value: -1}})
	err := storeErr("find sprint", query.FindOne(ctx, s.collection(), bson.M{"projectId": projectID}, &last, opts))
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return last.SprintNumber, nil
}

func (s *SprintService) Insert(ctx context.Context, sprint *models.Sprint) error {
	return storeErr("insert sprint", command.Insert(ctx, s.collection(), sprint))
}

func (s *SprintService) Update(ctx context.Context, sprint *models.Sprint) error {
	return storeErr("update sprint", command.Replace(ctx, s.collection(), sprint.ID, sprint))
}

func (s *SprintService) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := command.RemoveByID(ctx, s.collection(), id)
	return storeErr("delete sprint", err)
}

func (s *SprintService) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Sprint, error) {
	var sprints []*models.Sprint
	if err := query.FindMany(ctx, s.collection(), filter, &sprints, opts); err != nil {
		return nil, storeErr("list sprints", err)
	}
	return sprints, nil
}
