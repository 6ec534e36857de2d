package mongo

import (
	"context"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/command"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProjectService struct {
	*MongoService
}

func NewProjectService(mongoService *MongoService) *ProjectService {
	return &ProjectService{MongoService: mongoService}
}

func (s *ProjectService) collection() *mongo.Collection {
	return s.GetCollection(projectsCollection)
}

func (s *ProjectService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := query.FindByID(ctx, s.collection(), id, &p); err != nil {
		return nil, storeErr("find project", err)
	}
	return &p, nil
}

func (s *ProjectService) FindByKey(ctx context.Context, key string) (*models.Project, error) {
	var p models.Project
	if err := query.FindOne(ctx, s.collection(), bson.M{"key": key}, &p); err != nil {
		return nil, storeErr("find project", err)
	}
	return &p, nil
}

// ListForUser returns projects the user owns or belongs to.
func (s *ProjectService) ListForUser(ctx context.Context, userID primitive.ObjectID, includeArchived bool) ([]*models.Project, error) {
	b := query.NewBuilder().Or(bson.M{"ownerId": userID}, bson.M{"teamMembers": userID})
	if !includeArchived {
		b.WhereNe("status", models.ProjectStatusArchived)
	}
	return s.list(ctx, b.Build())
}

func (s *ProjectService) ListAll(ctx context.Context, includeArchived bool) ([]*models.Project, error) {
	b := query.NewBuilder()
	if !includeArchived {
		b.WhereNe("status", models.ProjectStatusArchived)
	}
	return s.list(ctx, b.Build())
}

func (s *ProjectService) Insert(ctx context.Context, p *models.Project) error {
	return storeErr("insert project", command.Insert(ctx, s.collection(), p))
}

func (s *ProjectService) Update(ctx context.Context, p *models.Project) error {
	return storeErr("update project", command.Replace(ctx, s.collection(), p.ID, p))
}

func (s *ProjectService) list(ctx context.Context, filter bson.M) ([]*models.Project, error) {
	var projects []*models.Project
	if err := query.FindMany(ctx, s.collection(), filter, &projects, query.Sorted(bson.E{Key: "createdAt", Value: -1})); err != nil {
		return nil, storeErr("list projects", err)
	}
	return projects, nil
}
