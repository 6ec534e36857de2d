package mongo

import (
	"context"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/command"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubmissionService persists sprint submissions. The unique
// (sprintId, userId) index created by EnsureIndexes backs the
// one-submission-per-user rule.
type SubmissionService struct {
	*MongoService
}

func NewSubmissionService(mongoService *MongoService) *SubmissionService {
	return &SubmissionService{MongoService: mongoService}
}

func (s *SubmissionService) collection() *mongo.Collection {
	return s.GetCollection(submissionsCollection)
}

func (s *SubmissionService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SprintSubmission, error) {
	var sub models.SprintSubmission
	if err := query.FindByID(ctx, s.collection(), id, &sub); err != nil {
		return nil, storeErr("find submission", err)
	}
	return &sub, nil
}

func (s *SubmissionService) FindOwned(ctx context.Context, id, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (s *SubmissionService) FindBySprintAndUser(ctx context.Context, sprintID, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	return s.findOne(ctx, bson.M{"sprintId": sprintID, "userId": userID})
}

func (s *SubmissionService) findOne(ctx context.Context, filter bson.M) (*models.SprintSubmission, error) {
	var sub models.SprintSubmission
	if err := query.FindOne(ctx, s.collection(), filter, &sub); err != nil {
		return nil, storeErr("find submission", err)
	}
	return &sub, nil
}

// ListBySprint returns submissions oldest first.
func (s *SubmissionService) ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.SprintSubmission, error) {
	return s.list(ctx, bson.M{"sprintId": sprintID}, 1)
}

func (s *SubmissionService) ListBySprintAndStatus(ctx context.Context, sprintID primitive.ObjectID, status models.SubmissionStatus) ([]*models.SprintSubmission, error) {
	return s.list(ctx, bson.M{"sprintId": sprintID, "submissionStatus": status}, 1)
}

// ListByUser returns the user's submissions newest first.
func (s *SubmissionService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.SprintSubmission, error) {
	return s.list(ctx, bson.M{"userId": userID}, -1)
}

func (s *SubmissionService) list(ctx context.Context, filter bson.M, order int) ([]*models.SprintSubmission, error) {
	var subs []*models.SprintSubmission
	opts := query.Sorted(bson.E{Key: "createdAt", Value: order}, bson.E{Key: "_id", Value: order})
	if err := query.FindMany(ctx, s.collection(), filter, &subs, opts); err != nil {
		return nil, storeErr("list submissions", err)
	}
	return subs, nil
}

func (s *SubmissionService) Insert(ctx context.Context, sub *models.SprintSubmission) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	return storeErr("insert submission", command.Insert(ctx, s.collection(), sub))
}

func (s *SubmissionService) Replace(ctx context.Context, sub *models.SprintSubmission) error {
	return storeErr("replace submission", command.Replace(ctx, s.collection(), sub.ID, sub))
}

// SetStatus updates only the status fields, leaving work data untouched.
// A nil submittedAt clears the stored timestamp.
func (s *SubmissionService) SetStatus(ctx context.Context, id primitive.ObjectID, status models.SubmissionStatus, submittedAt *time.Time, updatedAt time.Time) error {
	update := command.NewUpdateBuilder().
		Set("submissionStatus", status).
		Set("updatedAt", updatedAt)
	if submittedAt != nil {
		update.Set("submittedAt", *submittedAt)
	} else {
		update.Unset("submittedAt")
	}
	return storeErr("update submission", command.Apply(ctx, s.collection(), id, update.Build()))
}

// DeleteDraft removes the submission only while it is a Draft owned by
// userID. It reports whether a document was deleted.
func (s *SubmissionService) DeleteDraft(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	deleted, err := command.Remove(ctx, s.collection(), bson.M{
		"_id":              id,
		"userId":           userID,
		"submissionStatus": models.SubmissionStatusDraft,
	})
	if err != nil {
		return false, storeErr("delete submission", err)
	}
	return deleted, nil
}
