package tracker

import (
	"context"
	"log/slog"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	dashboardSprintLimit = 5
	dashboardTaskLimit   = 10
	defaultActivityCount = 20
)

type DashboardService struct {
	clock
	projects    ProjectStore
	sprints     SprintStore
	tasks       TaskStore
	submissions SubmissionStore
	activity    ActivityStore
	logger      *slog.Logger
}

func NewDashboardService(projects ProjectStore, sprints SprintStore, tasks TaskStore, submissions SubmissionStore, activity ActivityStore, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		projects:    projects,
		sprints:     sprints,
		tasks:       tasks,
		submissions: submissions,
		activity:    activity,
		logger:      componentLogger(logger, "DashboardService"),
	}
}

func (s *DashboardService) Stats(ctx context.Context, userID primitive.ObjectID) (*models.DashboardStats, error) {
	projects, err := s.projects.ListForUser(ctx, userID, false)
	if err != nil {
		return nil, s.fail("list", "project", userID, err)
	}
	projectIDs := make([]primitive.ObjectID, 0, len(projects))
	projectNames := make(map[primitive.ObjectID]string, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
		projectNames[p.ID] = p.Name
	}

	var (
		active   []*models.Sprint
		allTasks []*models.Task
	)
	if len(projectIDs) > 0 {
		if active, err = s.sprints.ListActiveByProjects(ctx, projectIDs); err != nil {
			return nil, s.fail("list", "sprint", userID, err)
		}
		if allTasks, err = s.tasks.ListByProjects(ctx, projectIDs); err != nil {
			return nil, s.fail("list", "task", userID, err)
		}
	}
	myTasks, err := s.tasks.ListOpenAssigned(ctx, userID, dashboardTaskLimit)
	if err != nil {
		return nil, s.fail("list", "task", userID, err)
	}

	stats := &models.DashboardStats{
		TotalProjects: len(projects),
		ActiveSprints: len(active),
		TotalTasks:    len(allTasks),
		RecentSprints: []models.SprintSummary{},
		MyTasks:       myTasks,
	}
	if stats.MyTasks == nil {
		stats.MyTasks = []*models.Task{}
	}
	for _, t := range allTasks {
		switch t.Status {
		case models.TaskStatusInProgress:
			stats.TasksInProgress++
		case models.TaskStatusDone:
			stats.TasksCompleted++
		case models.TaskStatusBlocked:
			stats.TasksBlocked++
		}
	}

	for i, sprint := range active {
		if i == dashboardSprintLimit {
			break
		}
		summary, err := s.summarize(ctx, sprint, projectNames, allTasks)
		if err != nil {
			return nil, s.fail("list", "submission", userID, err)
		}
		stats.RecentSprints = append(stats.RecentSprints, summary)
	}
	return stats, nil
}

func (s *DashboardService) summarize(ctx context.Context, sprint *models.Sprint, projectNames map[primitive.ObjectID]string, allTasks []*models.Task) (models.SprintSummary, error) {
	var sprintTasks []*models.Task
	for _, t := range allTasks {
		if t.SprintID != nil && *t.SprintID == sprint.ID {
			sprintTasks = append(sprintTasks, t)
		}
	}

	submitted, err := s.submissions.ListBySprintAndStatus(ctx, sprint.ID, models.SubmissionStatusSubmitted)
	if err != nil {
		return models.SprintSummary{}, err
	}
	var drafts []*models.SprintSubmission
	if len(submitted) == 0 {
		if drafts, err = s.submissions.ListBySprintAndStatus(ctx, sprint.ID, models.SubmissionStatusDraft); err != nil {
			return models.SprintSummary{}, err
		}
	}

	pct, source := Completion(submitted, drafts, sprintTasks)
	name, ok := projectNames[sprint.ProjectID]
	if !ok {
		name = unknownName
	}
	days := int(sprint.EndDate.Sub(s.Now()).Hours() / 24)

	s.logger.Debug("sprint summary computed", "sprintId", sprint.ID.Hex(), "completion", pct, "source", source)
	return models.SprintSummary{
		ID:                   sprint.ID,
		Name:                 sprint.Name,
		ProjectName:          name,
		Status:               sprint.Status,
		EndDate:              sprint.EndDate,
		CompletionPercentage: pct,
		DaysRemaining:        max(0, days),
		CompletionSource:     source,
	}, nil
}

// RecentActivity lists activity on tasks in the user's projects or by the
// user, newest first. count <= 0 means the default of 20.
func (s *DashboardService) RecentActivity(ctx context.Context, userID primitive.ObjectID, count int) ([]*models.ActivityLog, error) {
	if count <= 0 {
		count = defaultActivityCount
	}
	projects, err := s.projects.ListForUser(ctx, userID, true)
	if err != nil {
		return nil, s.fail("list", "project", userID, err)
	}
	var taskIDs []primitive.ObjectID
	if len(projects) > 0 {
		ids := make([]primitive.ObjectID, 0, len(projects))
		for _, p := range projects {
			ids = append(ids, p.ID)
		}
		tasks, err := s.tasks.ListByProjects(ctx, ids)
		if err != nil {
			return nil, s.fail("list", "task", userID, err)
		}
		for _, t := range tasks {
			taskIDs = append(taskIDs, t.ID)
		}
	}
	logs, err := s.activity.ListRecent(ctx, taskIDs, userID, count)
	if err != nil {
		return nil, s.fail("list", "activity", userID, err)
	}
	return logs, nil
}

func (s *DashboardService) fail(op, resource string, userID primitive.ObjectID, err error) error {
	s.logger.Error("dashboard query failed", "resource", resource, "userId", userID.Hex(), "error", err)
	return wrapStoreErr(op, resource, err)
}
