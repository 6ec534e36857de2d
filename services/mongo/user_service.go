package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/command"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	*MongoService
}

func NewUserService(mongoService *MongoService) *UserService {
	return &UserService{MongoService: mongoService}
}

func (s *UserService) collection() *mongo.Collection {
	return s.GetCollection(usersCollection)
}

func (s *UserService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := query.FindByID(ctx, s.collection(), id, &user); err != nil {
		return nil, storeErr("find user", err)
	}
	return &user, nil
}

// FindByEmail matches the lower-cased address; emails are stored lower-cased.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := query.FindOne(ctx, s.collection(), filter, &user); err != nil {
		return nil, storeErr("find user", err)
	}
	return &user, nil
}

// FindByIDs returns the users that exist among ids, in no particular order.
func (s *UserService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	var users []*models.User
	if err := query.FindMany(ctx, s.collection(), query.NewBuilder().WhereIn("_id", ids).Build(), &users); err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

func (s *UserService) Insert(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return storeErr("insert user", command.Insert(ctx, s.collection(), user))
}

func (s *UserService) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := command.NewUpdateBuilder().Set("lastLoginAt", at).Build()
	return storeErr("update user", command.Apply(ctx, s.collection(), id, update))
}

func (s *UserService) Update(ctx context.Context, user *models.User) error {
	return storeErr("update user", command.Replace(ctx, s.collection(), user.ID, user))
}

func (s *UserService) Search(ctx context.Context, f models.UserFilter, limit int) ([]*models.User, error) {
	b := query.NewBuilder().Where("isActive", true)
	if f.Role != nil {
		b.Where("role", *f.Role)
	}
	filter := b.Search(f.Search, "firstName", "lastName", "email").Build()

	opts := query.Sorted(bson.E{Key: "firstName", Value: 1}, bson.E{Key: "lastName", Value: 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	var users []*models.User
	if err := query.FindMany(ctx, s.collection(), filter, &users, opts); err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}
