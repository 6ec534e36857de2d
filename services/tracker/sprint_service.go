package tracker

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const velocityWindow = 10

type SprintService struct {
	clock
	sprints  SprintStore
	projects ProjectStore
	tasks    TaskStore
	users    UserStore
	metrics  MetricsStore
	logger   *slog.Logger
}

func NewSprintService(sprints SprintStore, projects ProjectStore, tasks TaskStore, users UserStore, metrics MetricsStore, logger *slog.Logger) *SprintService {
	return &SprintService{
		sprints:  sprints,
		projects: projects,
		tasks:    tasks,
		users:    users,
		metrics:  metrics,
		logger:   componentLogger(logger, "SprintService"),
	}
}

func (s *SprintService) Create(ctx context.Context, req *models.CreateSprintRequest, userID primitive.ObjectID) (*models.Sprint, error) {
	if errs := validateSprintRequest(req); len(errs) > 0 {
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
	if !models.CanManageSprint(actor, project) {
		s.logger.Warn("forbidden", "action", models.ActionManageSprint, "userId", userID.Hex(), "projectId", project.ID.Hex())
		return nil, ErrForbidden
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, ruleError(CodeInvalidDates, "End date must be after start date")
	}

	last, err := s.sprints.LastSprintNumber(ctx, project.ID)
	if err != nil {
		return nil, s.storeFail("count", project.ID, err)
	}
	now := s.Now()
	sprint := &models.Sprint{
		ID:           primitive.NewObjectID(),
		ProjectID:    project.ID,
		Name:         strings.TrimSpace(req.Name),
		Goal:         req.Goal,
		SprintNumber: last + 1,
		Status:       models.SprintStatusPlanning,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.sprints.Insert(ctx, sprint); err != nil {
		return nil, s.storeFail("insert", sprint.ID, err)
	}
	s.logger.Info("sprint created", "sprintId", sprint.ID.Hex(), "number", sprint.SprintNumber, "projectId", project.ID.Hex(), "userId", userID.Hex())
	return sprint, nil
}

// Get returns the sprint with task statistics.
func (s *SprintService) Get(ctx context.Context, id primitive.ObjectID) (*models.SprintDetail, error) {
	sprint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListBySprint(ctx, id)
	if err != nil {
		return nil, s.storeFail("list", id, err)
	}
	total, done := models.TaskPointTotals(tasks)
	stats := models.SprintStats{
		TotalTasks:           len(tasks),
		TotalStoryPoints:     total,
		CompletedStoryPoints: done,
		CompletionPercentage: Percent(done, total),
	}
	for _, t := range tasks {
		if t.Status == models.TaskStatusDone {
			stats.CompletedTasks++
		}
	}
	return &models.SprintDetail{Sprint: sprint, Stats: stats}, nil
}

func (s *SprintService) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*models.Sprint, error) {
	sprints, err := s.sprints.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.storeFail("list", projectID, err)
	}
	return sprints, nil
}

// Active returns the project's Active sprint or ErrNotFound.
func (s *SprintService) Active(ctx context.Context, projectID primitive.ObjectID) (*models.Sprint, error) {
	sprints, err := s.sprints.ListActiveByProjects(ctx, []primitive.ObjectID{projectID})
	if err != nil {
		return nil, s.storeFail("list", projectID, err)
	}
	if len(sprints) == 0 {
		return nil, ErrNotFound
	}
	return sprints[0], nil
}

// Update applies the set fields of req. A status change goes through Start,
// Complete or Cancel first so their side effects apply, and nothing is
// written when that transition is refused. Completed sprints are frozen.
// Committed points stay locked to the value taken at start.
func (s *SprintService) Update(ctx context.Context, id primitive.ObjectID, req *models.UpdateSprintRequest, userID primitive.ObjectID) (*models.Sprint, error) {
	sprint, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sprint.Status == models.SprintStatusCompleted {
		return nil, ruleError(CodeSprintCompleted, "Cannot update a completed sprint")
	}
	if errs := validateSprintUpdate(req); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	start, end := sprint.StartDate, sprint.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if !end.After(start) {
		return nil, ruleError(CodeInvalidDates, "End date must be after start date")
	}

	if req.Status != nil && *req.Status != sprint.Status {
		if !sprint.Status.CanTransition(*req.Status) {
			return nil, ruleError(CodeInvalidTransition,
				"Cannot change sprint status from "+string(sprint.Status)+" to "+string(*req.Status))
		}
		switch *req.Status {
		case models.SprintStatusActive:
			sprint, err = s.Start(ctx, id, userID)
		case models.SprintStatusCompleted:
			sprint, err = s.Complete(ctx, id, nil, userID)
		case models.SprintStatusCancelled:
			sprint, err = s.Cancel(ctx, id, userID)
		}
		if err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		sprint.Name = strings.TrimSpace(*req.Name)
	}
	if req.Goal != nil {
		sprint.Goal = req.Goal
	}
	sprint.StartDate, sprint.EndDate = start, end
	if req.Capacity != nil {
		sprint.Capacity.PlannedStoryPoints = req.Capacity.PlannedStoryPoints
		sprint.Capacity.TotalAvailableHours = req.Capacity.TotalAvailableHours
	}
	sprint.UpdatedAt = s.Now()
	if err := s.sprints.Update(ctx, sprint); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	s.logger.Info("sprint updated", "sprintId", id.Hex(), "status", sprint.Status, "userId", userID.Hex())
	return sprint, nil
}

// Start activates a Planning sprint and locks its committed points to the
// current task estimate.
func (s *SprintService) Start(ctx context.Context, id, userID primitive.ObjectID) (*models.Sprint, error) {
	sprint, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sprint.Status != models.SprintStatusPlanning {
		s.logger.Warn("cannot start sprint", "sprintId", id.Hex(), "status", sprint.Status)
		return nil, ruleError(CodeInvalidStatus, "Cannot start sprint: current status is "+string(sprint.Status))
	}
	busy, err := s.sprints.HasOtherActive(ctx, sprint.ProjectID, sprint.ID)
	if err != nil {
		return nil, s.storeFail("find", id, err)
	}
	if busy {
		return nil, ruleError(CodeActiveSprintExists, "Cannot start sprint: another sprint is already active for this project")
	}

	tasks, err := s.tasks.ListBySprint(ctx, id)
	if err != nil {
		return nil, s.storeFail("list", id, err)
	}
	committed, _ := models.TaskPointTotals(tasks)

	now := s.Now()
	sprint.Status = models.SprintStatusActive
	sprint.StartedAt = &now
	sprint.Capacity.CommittedStoryPoints = committed
	sprint.UpdatedAt = now
	if err := s.sprints.Update(ctx, sprint); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	s.recordMetrics(ctx, sprint.ID, tasks, now)

	s.logger.Info("sprint started", "sprintId", id.Hex(), "committed", committed, "userId", userID.Hex())
	return sprint, nil
}

// Complete closes an Active sprint, records its velocity and returns every
// unfinished task to the backlog.
func (s *SprintService) Complete(ctx context.Context, id primitive.ObjectID, retro *models.SprintRetrospective, userID primitive.ObjectID) (*models.Sprint, error) {
	if retro != nil && (retro.TeamMorale < 1 || retro.TeamMorale > 5) {
		return nil, &ValidationError{Errors: []string{"teamMorale must be between 1 and 5"}}
	}
	sprint, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sprint.Status != models.SprintStatusActive {
		s.logger.Warn("cannot complete sprint", "sprintId", id.Hex(), "status", sprint.Status)
		return nil, ruleError(CodeInvalidStatus, "Cannot complete sprint: current status is "+string(sprint.Status))
	}

	tasks, err := s.tasks.ListBySprint(ctx, id)
	if err != nil {
		return nil, s.storeFail("list", id, err)
	}
	_, velocity := models.TaskPointTotals(tasks)

	now := s.Now()
	sprint.Status = models.SprintStatusCompleted
	sprint.CompletedAt = &now
	sprint.ActualVelocity = &velocity
	sprint.UpdatedAt = now
	if retro != nil {
		sprint.Retrospective = retro
	}
	if err := s.sprints.Update(ctx, sprint); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	moved, err := s.tasks.MoveToBacklog(ctx, id, true, now)
	if err != nil {
		return nil, s.storeFail("update", id, err)
	}

	s.logger.Info("sprint completed", "sprintId", id.Hex(), "velocity", velocity,
		"committed", sprint.Capacity.CommittedStoryPoints, "movedToBacklog", moved, "userId", userID.Hex())
	return sprint, nil
}

// Cancel stops a Planning or Active sprint; unfinished tasks go back to
// the backlog.
func (s *SprintService) Cancel(ctx context.Context, id, userID primitive.ObjectID) (*models.Sprint, error) {
	sprint, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !sprint.Status.CanTransition(models.SprintStatusCancelled) {
		return nil, ruleError(CodeInvalidStatus, "Cannot cancel sprint: current status is "+string(sprint.Status))
	}
	now := s.Now()
	sprint.Status = models.SprintStatusCancelled
	sprint.UpdatedAt = now
	if err := s.sprints.Update(ctx, sprint); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	moved, err := s.tasks.MoveToBacklog(ctx, id, true, now)
	if err != nil {
		return nil, s.storeFail("update", id, err)
	}
	s.logger.Info("sprint cancelled", "sprintId", id.Hex(), "movedToBacklog", moved, "userId", userID.Hex())
	return sprint, nil
}

// Delete removes a sprint that is not Active after returning its tasks to
// the backlog.
func (s *SprintService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	sprint, err := s.authorize(ctx, id, userID)
	if err != nil {
		return err
	}
	if sprint.Status == models.SprintStatusActive {
		s.logger.Warn("cannot delete active sprint", "sprintId", id.Hex())
		return ruleError(CodeSprintActive, "Cannot delete an active sprint. Complete or cancel it first.")
	}
	if _, err := s.tasks.MoveToBacklog(ctx, id, false, s.Now()); err != nil {
		return s.storeFail("update", id, err)
	}
	if err := s.sprints.Delete(ctx, id); err != nil {
		return s.storeFail("delete", id, err)
	}
	s.logger.Info("sprint deleted", "sprintId", id.Hex(), "userId", userID.Hex())
	return nil
}

// Burndown pairs the ideal line over the sprint's days with the remaining
// points recorded in metrics snapshots. A missing sprint yields empty lines.
func (s *SprintService) Burndown(ctx context.Context, id primitive.ObjectID) (*models.BurndownData, error) {
	out := &models.BurndownData{SprintID: id, Ideal: []models.BurndownPoint{}, Actual: []models.BurndownPoint{}}
	sprint, err := s.sprints.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, s.storeFail("find", id, err)
	}
	snapshots, err := s.metrics.ListBySprint(ctx, id)
	if err != nil {
		return nil, s.storeFail("list", id, err)
	}

	days := max(1, int(sprint.EndDate.Sub(sprint.StartDate).Hours()/24))
	total := float64(sprint.Capacity.CommittedStoryPoints)
	for i := 0; i <= days; i++ {
		ideal := total - total*float64(i)/float64(days)
		out.Ideal = append(out.Ideal, models.BurndownPoint{
			Date:   sprint.StartDate.AddDate(0, 0, i),
			Points: math.RoundToEven(ideal*10) / 10,
		})
	}
	for _, m := range snapshots {
		out.Actual = append(out.Actual, models.BurndownPoint{Date: m.Date, Points: float64(m.RemainingPoints)})
	}
	return out, nil
}

// Velocity reports committed vs completed points for the last ten
// completed sprints of a project.
func (s *SprintService) Velocity(ctx context.Context, projectID primitive.ObjectID) (*models.VelocityData, error) {
	sprints, err := s.sprints.ListCompleted(ctx, projectID, velocityWindow)
	if err != nil {
		return nil, s.storeFail("list", projectID, err)
	}
	out := &models.VelocityData{ProjectID: projectID, Sprints: []models.SprintVelocity{}}
	sum := 0
	for _, sp := range sprints {
		completed := 0
		if sp.ActualVelocity != nil {
			completed = *sp.ActualVelocity
		}
		sum += completed
		out.Sprints = append(out.Sprints, models.SprintVelocity{
			SprintName:      sp.Name,
			CommittedPoints: sp.Capacity.CommittedStoryPoints,
			CompletedPoints: completed,
		})
	}
	if len(out.Sprints) > 0 {
		out.AverageVelocity = float64(sum) / float64(len(out.Sprints))
	}
	return out, nil
}

// RecordMetrics snapshots the sprint's current burndown state.
func (s *SprintService) RecordMetrics(ctx context.Context, id primitive.ObjectID) error {
	tasks, err := s.tasks.ListBySprint(ctx, id)
	if err != nil {
		return s.storeFail("list", id, err)
	}
	if err := s.metrics.Insert(ctx, snapshot(id, tasks, s.Now())); err != nil {
		return s.storeFail("insert", id, err)
	}
	return nil
}

func (s *SprintService) recordMetrics(ctx context.Context, id primitive.ObjectID, tasks []*models.Task, at time.Time) {
	if err := s.metrics.Insert(ctx, snapshot(id, tasks, at)); err != nil {
		s.logger.Warn("failed to record sprint metrics", "sprintId", id.Hex(), "error", err)
	}
}

func snapshot(id primitive.ObjectID, tasks []*models.Task, at time.Time) *models.SprintMetrics {
	total, done := models.TaskPointTotals(tasks)
	byStatus := make(map[string]int)
	for _, t := range tasks {
		byStatus[string(t.Status)]++
	}
	return &models.SprintMetrics{
		ID:              primitive.NewObjectID(),
		SprintID:        id,
		Date:            at,
		TotalPoints:     total,
		CompletedPoints: done,
		RemainingPoints: total - done,
		TasksByStatus:   byStatus,
	}
}

func (s *SprintService) find(ctx context.Context, id primitive.ObjectID) (*models.Sprint, error) {
	sprint, err := s.sprints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, s.storeFail("find", id, err)
	}
	return sprint, nil
}

// authorize loads the sprint and checks the caller may manage it.
func (s *SprintService) authorize(ctx context.Context, id, userID primitive.ObjectID) (*models.Sprint, error) {
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	sprint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projects, sprint.ProjectID)
	if err != nil {
		return nil, err
	}
	if !models.CanManageSprint(actor, project) {
		s.logger.Warn("forbidden", "action", models.ActionManageSprint, "userId", userID.Hex(), "sprintId", id.Hex())
		return nil, ErrForbidden
	}
	return sprint, nil
}

func (s *SprintService) storeFail(op string, id primitive.ObjectID, err error) error {
	s.logger.Error("sprint store failure", "op", op, "id", id.Hex(), "error", err)
	return wrapStoreErr(op, "sprint", err)
}

func validateSprintRequest(req *models.CreateSprintRequest) []string {
	if req == nil {
		return []string{"request body is required"}
	}
	var errs []string
	if req.ProjectID.IsZero() {
		errs = append(errs, "projectId is required")
	}
	if name := strings.TrimSpace(req.Name); name == "" || len(name) > 200 {
		errs = append(errs, "name is required and must be at most 200 characters")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		errs = append(errs, "startDate and endDate are required")
	}
	return errs
}

func validateSprintUpdate(req *models.UpdateSprintRequest) []string {
	if req == nil {
		return []string{"request body is required"}
	}
	var errs []string
	if req.Name != nil {
		if n := len(strings.TrimSpace(*req.Name)); n < 2 || n > 200 {
			errs = append(errs, "name must be between 2 and 200 characters")
		}
	}
	if req.Goal != nil && len(*req.Goal) > 1000 {
		errs = append(errs, "goal must be at most 1000 characters")
	}
	if req.Status != nil && !req.Status.IsValid() {
		errs = append(errs, "status is invalid")
	}
	if c := req.Capacity; c != nil && (c.PlannedStoryPoints < 0 || c.TotalAvailableHours < 0) {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}
