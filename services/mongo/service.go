package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection       = "users"
	projectsCollection    = "projects"
	sprintsCollection     = "sprints"
	tasksCollection       = "tasks"
	submissionsCollection = "sprint_submissions"
	metricsCollection     = "sprint_metrics"
	activityCollection    = "activity_logs"
)

type MongoService struct {
	db *mongo.Database
}

func New(db *mongo.Database) *MongoService {
	return &MongoService{db: db}
}

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

func (s *MongoService) GetDatabase() *mongo.Database {
	return s.db
}

func (s *MongoService) GetCollection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

var (
	_ tracker.SubmissionStore = (*SubmissionService)(nil)
	_ tracker.SprintStore     = (*SprintService)(nil)
	_ tracker.TaskStore       = (*TaskService)(nil)
	_ tracker.UserStore       = (*UserService)(nil)
	_ tracker.ProjectStore    = (*ProjectService)(nil)
	_ tracker.MetricsStore    = (*MetricsService)(nil)
	_ tracker.ActivityStore   = (*ActivityService)(nil)
)
