package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxTaskTitleLen   = 500
	maxTaskLabels     = 20
	maxTaskHours      = 1000
	maxLogHours       = 24
	minLogHours       = 0.1
	maxWorkLogNoteLen = 500
)

type TaskService struct {
	clock
	tasks    TaskStore
	projects ProjectStore
	sprints  SprintStore
	users    UserStore
	activity activityRecorder
	logger   *slog.Logger
}

func NewTaskService(tasks TaskStore, projects ProjectStore, sprints SprintStore, users UserStore, activity ActivityStore, logger *slog.Logger) *TaskService {
	l := componentLogger(logger, "TaskService")
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		sprints:  sprints,
		users:    users,
		activity: activityRecorder{store: activity, logger: l},
		logger:   l,
	}
}

// Create adds a task keyed <PROJECT>-<n>. Only Admins and project members
// may create tasks.
func (s *TaskService) Create(ctx context.Context, req *models.CreateTaskRequest, userID primitive.ObjectID) (*models.Task, error) {
	if errs := validateTaskRequest(req); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projects, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !models.CanViewProject(actor, project) {
		s.logger.Warn("forbidden", "action", "task:create", "userId", userID.Hex(), "projectId", project.ID.Hex())
		return nil, ErrForbidden
	}
	if req.SprintID != nil {
		if err := s.checkSprint(ctx, *req.SprintID, project.ID); err != nil {
			return nil, err
		}
	}

	number := 1
	last, err := s.tasks.LatestInProject(ctx, project.ID)
	switch {
	case err == nil:
		number = nextTaskNumber(last.TaskKey)
	case !errors.Is(err, ErrNotFound):
		return nil, s.storeFail("find", project.ID, err)
	}
	order, err := s.tasks.CountInSprint(ctx, project.ID, req.SprintID)
	if err != nil {
		return nil, s.storeFail("count", project.ID, err)
	}

	now := s.Now()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		TaskKey:     fmt.Sprintf("%s-%d", project.Key, number),
		ProjectID:   project.ID,
		SprintID:    req.SprintID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		Status:      models.TaskStatusToDo,
		Priority:    req.Priority,
		StoryPoints: req.StoryPoints,
		AssigneeID:  req.AssigneeID,
		ReporterID:  userID,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Type == "" {
		task.Type = models.TaskTypeTask
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, s.storeFail("insert", task.ID, err)
	}
	s.activity.record(ctx, "Task", task.ID, "Created", userID, now)
	s.logger.Info("task created", "taskKey", task.TaskKey, "projectId", project.ID.Hex(), "userId", userID.Hex())
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, s.storeFail("find", id, err)
	}
	return t, nil
}

func (s *TaskService) ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.Task, error) {
	tasks, err := s.tasks.ListBySprint(ctx, sprintID)
	if err != nil {
		return nil, s.storeFail("list", sprintID, err)
	}
	return tasks, nil
}

func (s *TaskService) Backlog(ctx context.Context, projectID primitive.ObjectID) ([]*models.Task, error) {
	tasks, err := s.tasks.ListBacklog(ctx, projectID)
	if err != nil {
		return nil, s.storeFail("list", projectID, err)
	}
	return tasks, nil
}

// MyTasks lists the caller's open tasks, highest priority first.
func (s *TaskService) MyTasks(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	tasks, err := s.tasks.ListOpenAssigned(ctx, userID, limit)
	if err != nil {
		return nil, s.storeFail("list", userID, err)
	}
	return tasks, nil
}

// UpdateStatus moves a task through the board. Moving to Done stamps
// CompletedAt; moving away clears it.
func (s *TaskService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, userID primitive.ObjectID) (*models.Task, error) {
	if !status.IsValid() {
		return nil, &ValidationError{Errors: []string{"unknown task status " + strconv.Quote(string(status))}}
	}
	task, err := s.authorize(ctx, id, userID, true)
	if err != nil {
		return nil, err
	}
	if task.Status == status {
		return task, nil
	}
	now := s.Now()
	old := task.Status
	task.Status = status
	task.UpdatedAt = now
	if status == models.TaskStatusDone {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	s.activity.record(ctx, "Task", task.ID, "Updated", userID, now, change("status", string(old), string(status)))
	s.logger.Info("task status updated", "taskKey", task.TaskKey, "from", old, "to", status, "userId", userID.Hex())
	return task, nil
}

// Move places a task in a sprint (or the backlog when SprintID is nil).
func (s *TaskService) Move(ctx context.Context, id primitive.ObjectID, req *models.MoveTaskRequest, userID primitive.ObjectID) (*models.Task, error) {
	task, err := s.authorize(ctx, id, userID, true)
	if err != nil {
		return nil, err
	}
	if req.SprintID != nil {
		if err := s.checkSprint(ctx, *req.SprintID, task.ProjectID); err != nil {
			return nil, err
		}
	}
	now := s.Now()
	from := sprintLabel(task.SprintID)
	task.SprintID = req.SprintID
	task.Order = req.Order
	task.UpdatedAt = now
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	s.activity.record(ctx, "Task", task.ID, "Moved", userID, now, change("sprintId", from, sprintLabel(req.SprintID)))
	return task, nil
}

// Query returns one page of tasks matching f, ordered by board order.
func (s *TaskService) Query(ctx context.Context, f models.TaskFilter) (*models.Page[*models.Task], error) {
	f.Clamp()
	tasks, total, err := s.tasks.Query(ctx, f)
	if err != nil {
		return nil, s.storeFail("query", primitive.NilObjectID, err)
	}
	return models.NewPage(tasks, total, f.Page, f.PageSize), nil
}

// Update applies the set fields of req with the same permission as a
// status change. Changes to title, type, status, priority, assignee and
// sprint are recorded in the activity log.
func (s *TaskService) Update(ctx context.Context, id primitive.ObjectID, req *models.UpdateTaskRequest, userID primitive.ObjectID) (*models.Task, error) {
	if errs := validateTaskUpdate(req); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	task, err := s.authorize(ctx, id, userID, true)
	if err != nil {
		return nil, err
	}
	if req.SprintID != nil {
		if err := s.checkSprint(ctx, *req.SprintID, task.ProjectID); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	var changes []models.FieldChange
	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != task.Title {
			changes = append(changes, change("title", task.Title, title))
			task.Title = title
		}
	}
	if req.Type != nil && *req.Type != task.Type {
		changes = append(changes, change("type", string(task.Type), string(*req.Type)))
		task.Type = *req.Type
	}
	if req.Status != nil && *req.Status != task.Status {
		changes = append(changes, change("status", string(task.Status), string(*req.Status)))
		task.Status = *req.Status
		if task.Status == models.TaskStatusDone {
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	if req.Priority != nil && *req.Priority != task.Priority {
		changes = append(changes, change("priority", strconv.Itoa(int(task.Priority)), strconv.Itoa(int(*req.Priority))))
		task.Priority = *req.Priority
	}
	if req.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *req.AssigneeID) {
		changes = append(changes, change("assigneeId", assigneeLabel(task.AssigneeID), req.AssigneeID.Hex()))
		task.AssigneeID = req.AssigneeID
	}
	if req.SprintID != nil && (task.SprintID == nil || *task.SprintID != *req.SprintID) {
		changes = append(changes, change("sprintId", sprintLabel(task.SprintID), req.SprintID.Hex()))
		task.SprintID = req.SprintID
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.StoryPoints != nil {
		task.StoryPoints = req.StoryPoints
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = req.EstimatedHours
	}
	if req.RemainingHours != nil {
		task.RemainingHours = req.RemainingHours
	}
	if req.Labels != nil {
		task.Labels = req.Labels
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Order != nil {
		task.Order = *req.Order
	}
	task.UpdatedAt = now
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	if len(changes) > 0 {
		s.activity.record(ctx, "Task", task.ID, "Updated", userID, now, changes...)
	}
	s.logger.Info("task updated", "taskKey", task.TaskKey, "changes", len(changes), "userId", userID.Hex())
	return task, nil
}

// LogTime adds hours to a task and burns them off its remaining estimate.
// Admins, the project owner and team members may log time.
func (s *TaskService) LogTime(ctx context.Context, id primitive.ObjectID, req *models.LogTimeRequest, userID primitive.ObjectID) (*models.Task, error) {
	var errs []string
	if req.Hours < minLogHours || req.Hours > maxLogHours {
		errs = append(errs, "hours must be between 0.1 and 24")
	}
	if req.Description != nil && len([]rune(*req.Description)) > maxWorkLogNoteLen {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", maxWorkLogNoteLen))
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projects, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !models.CanLogTime(actor, project) {
		s.logger.Warn("forbidden", "action", models.ActionLogTime, "userId", userID.Hex(), "taskId", id.Hex())
		return nil, ErrForbidden
	}

	now := s.Now()
	before := task.LoggedHours
	task.LoggedHours += req.Hours
	if task.RemainingHours != nil {
		left := max(0, *task.RemainingHours-req.Hours)
		task.RemainingHours = &left
	}
	task.UpdatedAt = now
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	s.activity.record(ctx, "Task", task.ID, "TimeLogged", userID, now,
		change("loggedHours", formatHours(before), formatHours(task.LoggedHours)))
	s.logger.Info("time logged", "taskKey", task.TaskKey, "hours", req.Hours, "userId", userID.Hex())
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return err
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	project, err := loadProject(ctx, s.projects, task.ProjectID)
	if err != nil {
		return err
	}
	if !models.CanDeleteTask(actor, project, task) {
		s.logger.Warn("forbidden", "action", models.ActionDeleteTask, "userId", userID.Hex(), "taskId", id.Hex())
		return ErrForbidden
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return s.storeFail("delete", id, err)
	}
	s.activity.record(ctx, "Task", id, "Deleted", userID, s.Now())
	s.logger.Info("task deleted", "taskKey", task.TaskKey, "userId", userID.Hex())
	return nil
}

func (s *TaskService) authorize(ctx context.Context, id, userID primitive.ObjectID, allowAssignee bool) (*models.Task, error) {
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projects, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !models.CanModifyTask(actor, project, task, allowAssignee) {
		s.logger.Warn("forbidden", "action", models.ActionModifyTask, "userId", userID.Hex(), "taskId", id.Hex())
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *TaskService) checkSprint(ctx context.Context, sprintID, projectID primitive.ObjectID) error {
	sprint, err := s.sprints.FindByID(ctx, sprintID)
	if err != nil {
		return wrapStoreErr("find", "sprint", err)
	}
	if sprint.ProjectID != projectID {
		return &ValidationError{Errors: []string{"sprint belongs to a different project"}}
	}
	return nil
}

func (s *TaskService) storeFail(op string, id primitive.ObjectID, err error) error {
	s.logger.Error("task store failure", "op", op, "id", id.Hex(), "error", err)
	return wrapStoreErr(op, "task", err)
}

// nextTaskNumber parses KEY-n and returns n+1, or 1 when key is malformed.
func nextTaskNumber(key string) int {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return 1
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 1
	}
	return n + 1
}

func sprintLabel(id *primitive.ObjectID) string {
	if id == nil {
		return "backlog"
	}
	return id.Hex()
}

func assigneeLabel(id *primitive.ObjectID) string {
	if id == nil {
		return "unassigned"
	}
	return id.Hex()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func validateTaskUpdate(req *models.UpdateTaskRequest) []string {
	if req == nil {
		return []string{"request body is required"}
	}
	var errs []string
	if req.Title != nil {
		if n := len([]rune(strings.TrimSpace(*req.Title))); n < 3 || n > maxTaskTitleLen {
			errs = append(errs, fmt.Sprintf("title must be between 3 and %d characters", maxTaskTitleLen))
		}
	}
	if req.Type != nil && !req.Type.IsValid() {
		errs = append(errs, "type is invalid")
	}
	if req.Status != nil && !req.Status.IsValid() {
		errs = append(errs, "status is invalid")
	}
	if req.Priority != nil && (*req.Priority < models.PriorityLowest || *req.Priority > models.PriorityCritical) {
		errs = append(errs, "priority must be between 0 and 5")
	}
	if req.StoryPoints != nil && (*req.StoryPoints < 0 || *req.StoryPoints > 100) {
		errs = append(errs, "storyPoints must be between 0 and 100")
	}
	for _, h := range []*float64{req.EstimatedHours, req.RemainingHours} {
		if h != nil && (*h < 0 || *h > maxTaskHours) {
			errs = append(errs, "hours must be between 0 and 1000")
			break
		}
	}
	if len(req.Labels) > maxTaskLabels {
		errs = append(errs, fmt.Sprintf("at most %d labels are allowed", maxTaskLabels))
	}
	if req.Order != nil && *req.Order < 0 {
		errs = append(errs, "order must not be negative")
	}
	return errs
}

func validateTaskRequest(req *models.CreateTaskRequest) []string {
	if req == nil {
		return []string{"request body is required"}
	}
	var errs []string
	if req.ProjectID.IsZero() {
		errs = append(errs, "projectId is required")
	}
	if title := strings.TrimSpace(req.Title); title == "" || len([]rune(title)) > maxTaskTitleLen {
		errs = append(errs, fmt.Sprintf("title is required and must be at most %d characters", maxTaskTitleLen))
	}
	if req.Priority < models.PriorityLowest || req.Priority > models.PriorityCritical {
		errs = append(errs, "priority must be between 0 and 5")
	}
	if req.StoryPoints != nil && (*req.StoryPoints < 0 || *req.StoryPoints > 100) {
		errs = append(errs, "storyPoints must be between 0 and 100")
	}
	return errs
}
