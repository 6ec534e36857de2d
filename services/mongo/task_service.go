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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskService struct {
	*MongoService
}

func NewTaskService(mongoService *MongoService) *TaskService {
	return &TaskService{MongoService: mongoService}
}

func (s *TaskService) collection() *mongo.Collection {
	return s.GetCollection(tasksCollection)
}

func (s *TaskService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	if err := query.FindByID(ctx, s.collection(), id, &task); err != nil {
		return nil, storeErr("find task", err)
	}
	return &task, nil
}

func (s *TaskService) ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.Task, error) {
	return s.list(ctx, bson.M{"sprintId": sprintID}, byOrder())
}

func (s *TaskService) ListBacklog(ctx context.Context, projectID primitive.ObjectID) ([]*models.Task, error) {
	filter := query.NewBuilder().Where("projectId", projectID).WhereNull("sprintId").Build()
	return s.list(ctx, filter, byOrder())
}

func (s *TaskService) ListByProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]*models.Task, error) {
	return s.list(ctx, query.NewBuilder().WhereIn("projectId", projectIDs).Build(), nil)
}

// ListOpenAssigned returns unfinished tasks assigned to the user, highest
// priority first.
func (s *TaskService) ListOpenAssigned(ctx context.Context, assigneeID primitive.ObjectID, limit int) ([]*models.Task, error) {
	filter := query.NewBuilder().
		Where("assigneeId", assigneeID).
		WhereNe("status", models.TaskStatusDone).
		Build()
	opts := query.Sorted(bson.E{Key: "priority", Value: -1}, bson.E{Key: "updatedAt", Value: -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.list(ctx, filter, opts)
}

func (s *TaskService) LatestInProject(ctx context.Context, projectID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if err := query.FindOne(ctx, s.collection(), bson.M{"projectId": projectID}, &task, opts); err != nil {
		return nil, storeErr("find task", err)
	}
	return &task, nil
}

// CountInSprint counts the project's tasks in sprintID, or in the backlog
// when sprintID is nil.
func (s *TaskService) CountInSprint(ctx context.Context, projectID primitive.ObjectID, sprintID *primitive.ObjectID) (int, error) {
	b := query.NewBuilder().Where("projectId", projectID)
	if sprintID == nil {
		b.WhereNull("sprintId")
	} else {
		b.Where("sprintId", *sprintID)
	}
	n, err := query.Count(ctx, s.collection(), b.Build())
	if err != nil {
		return 0, storeErr("count tasks", err)
	}
	return int(n), nil
}

func (s *TaskService) Insert(ctx context.Context, task *models.Task) error {
	return storeErr("insert task", command.Insert(ctx, s.collection(), task))
}

func (s *TaskService) Update(ctx context.Context, task *models.Task) error {
	return storeErr("update task", command.Replace(ctx, s.collection(), task.ID, task))
}

func (s *TaskService) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := command.RemoveByID(ctx, s.collection(), id)
	return storeErr("delete task", err)
}

// MoveToBacklog detaches the sprint's tasks, skipping Done ones when
// keepDone is set, and returns how many moved.
func (s *TaskService) MoveToBacklog(ctx context.Context, sprintID primitive.ObjectID, keepDone bool, at time.Time) (int, error) {
	filter := query.NewBuilder().Where("sprintId", sprintID)
	if keepDone {
		filter.WhereNe("status", models.TaskStatusDone)
	}
	update := command.NewUpdateBuilder().
		Set("sprintId", nil).
		Set("updatedAt", at).
		Build()
	moved, err := command.ApplyMany(ctx, s.collection(), filter.Build(), update)
	if err != nil {
		return 0, storeErr("move tasks", err)
	}
	return moved, nil
}

func (s *TaskService) Query(ctx context.Context, f models.TaskFilter) ([]*models.Task, int, error) {
	b := query.NewBuilder()
	if f.ProjectID != nil {
		b.Where("projectId", *f.ProjectID)
	}
	if f.SprintID != nil {
		b.Where("sprintId", *f.SprintID)
	}
	if f.AssigneeID != nil {
		b.Where("assigneeId", *f.AssigneeID)
	}
	if f.Status != nil {
		b.Where("status", *f.Status)
	}
	if f.Type != nil {
		b.Where("type", *f.Type)
	}
	if f.Priority != nil {
		b.Where("priority", *f.Priority)
	}
	filter := b.Search(f.Search, "title", "taskKey").Build()

	total, err := query.Count(ctx, s.collection(), filter)
	if err != nil {
		return nil, 0, storeErr("count tasks", err)
	}
	opts := byOrder().SetSkip(int64(f.Skip())).SetLimit(int64(f.PageSize))
	tasks, err := s.list(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return tasks, int(total), nil
}

func (s *TaskService) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Task, error) {
	var tasks []*models.Task
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	if err := query.FindMany(ctx, s.collection(), filter, &tasks, findOpts...); err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

func byOrder() *options.FindOptions {
	return query.Sorted(bson.E{Key: "order", Value: 1}, bson.E{Key: "createdAt", Value: 1})
}
