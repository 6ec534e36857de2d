package tracker

import (
	"context"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Single-document lookups return ErrNotFound when nothing matches. Inserts
// that collide with a unique index return ErrDuplicateKey.

type SubmissionStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.SprintSubmission, error)
	FindOwned(ctx context.Context, id, userID primitive.ObjectID) (*models.SprintSubmission, error)
	FindBySprintAndUser(ctx context.Context, sprintID, userID primitive.ObjectID) (*models.SprintSubmission, error)
	ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.SprintSubmission, error)
	ListBySprintAndStatus(ctx context.Context, sprintID primitive.ObjectID, status models.SubmissionStatus) ([]*models.SprintSubmission, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.SprintSubmission, error)
	Insert(ctx context.Context, s *models.SprintSubmission) error
	Replace(ctx context.Context, s *models.SprintSubmission) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.SubmissionStatus, submittedAt *time.Time, updatedAt time.Time) error
	// DeleteDraft removes the submission only when it is owned by userID and
	// still a Draft.
	DeleteDraft(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
}

type SprintStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Sprint, error)
	// ListByProject returns the newest sprint number first.
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*models.Sprint, error)
	ListActiveByProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]*models.Sprint, error)
	// ListCompleted returns up to limit completed sprints, latest completion first.
	ListCompleted(ctx context.Context, projectID primitive.ObjectID, limit int) ([]*models.Sprint, error)
	HasOtherActive(ctx context.Context, projectID, excludeID primitive.ObjectID) (bool, error)
	LastSprintNumber(ctx context.Context, projectID primitive.ObjectID) (int, error)
	Insert(ctx context.Context, s *models.Sprint) error
	Update(ctx context.Context, s *models.Sprint) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TaskStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.Task, error)
	ListBacklog(ctx context.Context, projectID primitive.ObjectID) ([]*models.Task, error)
	ListByProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]*models.Task, error)
	// ListOpenAssigned returns up to limit non-Done tasks of the assignee,
	// highest priority first.
	ListOpenAssigned(ctx context.Context, assigneeID primitive.ObjectID, limit int) ([]*models.Task, error)
	LatestInProject(ctx context.Context, projectID primitive.ObjectID) (*models.Task, error)
	CountInSprint(ctx context.Context, projectID primitive.ObjectID, sprintID *primitive.ObjectID) (int, error)
	Insert(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// MoveToBacklog detaches the sprint's tasks. With keepDone set, Done
	// tasks stay in the sprint.
	MoveToBacklog(ctx context.Context, sprintID primitive.ObjectID, keepDone bool, at time.Time) (int, error)
	// Query returns one page of tasks ordered by order, plus the total match
	// count. The filter is already clamped.
	Query(ctx context.Context, f models.TaskFilter) ([]*models.Task, int, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Update(ctx context.Context, u *models.User) error
	// Search lists active users matching f, sorted by first then last name.
	Search(ctx context.Context, f models.UserFilter, limit int) ([]*models.User, error)
}

type ProjectStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindByKey(ctx context.Context, key string) (*models.Project, error)
	// ListForUser returns projects the user owns or belongs to.
	ListForUser(ctx context.Context, userID primitive.ObjectID, includeArchived bool) ([]*models.Project, error)
	ListAll(ctx context.Context, includeArchived bool) ([]*models.Project, error)
	Insert(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, p *models.Project) error
}

type MetricsStore interface {
	Insert(ctx context.Context, m *models.SprintMetrics) error
	// ListBySprint returns snapshots in date order.
	ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.SprintMetrics, error)
}

type ActivityStore interface {
	Insert(ctx context.Context, a *models.ActivityLog) error
	ListRecent(ctx context.Context, entityIDs []primitive.ObjectID, userID primitive.ObjectID, limit int) ([]*models.ActivityLog, error)
}

// ReportCache holds computed sprint reports. Implementations may be lossy.
type ReportCache interface {
	Get(ctx context.Context, sprintID primitive.ObjectID) (*models.SprintReportData, bool, error)
	Set(ctx context.Context, sprintID primitive.ObjectID, report *models.SprintReportData) error
	Invalidate(ctx context.Context, sprintID primitive.ObjectID) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.SubmissionEvent) error
}

type ReportRenderer interface {
	Render(report *models.SprintReportData) ([]byte, error)
}

// ReportArchive stores rendered reports and returns their location.
type ReportArchive interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}
