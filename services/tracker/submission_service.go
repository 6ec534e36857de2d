package tracker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionResult is either FoundSubmission or SubmissionTemplate.
type SubmissionResult interface {
	isSubmissionResult()
}

type FoundSubmission struct {
	Submission *models.SprintSubmission
}

// SubmissionTemplate describes an empty Draft that has not been saved.
type SubmissionTemplate struct {
	SprintID  primitive.ObjectID
	ProjectID primitive.ObjectID
	UserID    primitive.ObjectID
}

func (FoundSubmission) isSubmissionResult()    {}
func (SubmissionTemplate) isSubmissionResult() {}

type SubmissionService struct {
	clock
	submissions SubmissionStore
	sprints     SprintStore
	cache       ReportCache
	events      EventPublisher
	logger      *slog.Logger
}

func NewSubmissionService(submissions SubmissionStore, sprints SprintStore, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		sprints:     sprints,
		logger:      componentLogger(logger, "SubmissionService"),
	}
}

// WithCache sets the report cache invalidated after each mutation.
func (s *SubmissionService) WithCache(c ReportCache) *SubmissionService {
	s.cache = c
	return s
}

func (s *SubmissionService) WithEvents(p EventPublisher) *SubmissionService {
	s.events = p
	return s
}

// CreateOrUpdate saves the caller's submission for input's sprint. An
// existing Draft or Reviewed submission is replaced and reset to Draft; a
// Submitted one is rejected.
func (s *SubmissionService) CreateOrUpdate(ctx context.Context, input *models.SubmissionInput, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	if input == nil || input.SprintID.IsZero() {
		return nil, ruleError(CodeSprintRequired, "Sprint ID is required")
	}
	if errs := input.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	sprint, err := s.sprints.FindByID(ctx, input.SprintID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to load sprint", "sprintId", input.SprintID.Hex(), "error", err)
		}
		return nil, wrapStoreErr("find", "sprint", err)
	}

	now := s.Now()
	sub := input.ToSubmission(now)
	if sub.ApplyPlannedFallback() {
		s.logger.Info("computed planned points from user stories", "sprintId", sub.SprintID.Hex(), "planned", sub.StoryPointsPlanned)
	}
	sub.StoryPointsPlanned = max(sub.StoryPointsPlanned, 0)
	sub.StoryPointsCompleted = max(sub.StoryPointsCompleted, 0)
	if !sub.PointsWithinBudget() {
		s.logger.Warn("rejected submission", "code", CodeInvalidPoints, "sprintId", sub.SprintID.Hex(), "userId", userID.Hex())
		return nil, ruleError(CodeInvalidPoints, "Story points completed cannot exceed planned points")
	}

	existing, err := s.submissions.FindBySprintAndUser(ctx, sub.SprintID, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to load submission", "sprintId", sub.SprintID.Hex(), "userId", userID.Hex(), "error", err)
		return nil, wrapStoreErr("find", "submission", err)
	}

	sub.UserID = userID
	sub.UpdatedAt = now
	if sub.ProjectID.IsZero() {
		sub.ProjectID = sprint.ProjectID
	}
	action := "created"
	if existing != nil {
		if existing.Status == models.SubmissionStatusSubmitted {
			s.logger.Warn("rejected submission", "code", CodeSubmissionSubmitted, "submissionId", existing.ID.Hex())
			return nil, ruleError(CodeSubmissionSubmitted, "Cannot update a submission that has already been submitted")
		}
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
		if err := s.submissions.Replace(ctx, sub); err != nil {
			s.logger.Error("failed to replace submission", "submissionId", sub.ID.Hex(), "error", err)
			return nil, wrapStoreErr("replace", "submission", err)
		}
		action = "updated"
	} else {
		sub.ID = primitive.NewObjectID()
		sub.CreatedAt = now
		if err := s.submissions.Insert(ctx, sub); err != nil {
			if !errors.Is(err, ErrDuplicateKey) {
				s.logger.Error("failed to insert submission", "sprintId", sub.SprintID.Hex(), "error", err)
			}
			return nil, wrapStoreErr("insert", "submission", err)
		}
	}

	s.logger.Info("submission saved",
		"action", action,
		"submissionId", sub.ID.Hex(),
		"sprintId", sub.SprintID.Hex(),
		"userId", userID.Hex(),
		"planned", sub.StoryPointsPlanned,
		"completed", sub.StoryPointsCompleted,
		"stories", len(sub.UserStories),
		"features", len(sub.FeaturesDelivered),
		"impediments", len(sub.Impediments),
		"appreciations", len(sub.Appreciations),
	)
	s.afterMutation(ctx, action, sub)
	return sub, nil
}

// Submit locks the caller's submission. The returned value is the stored
// document as read before the update with the status and time fields
// refreshed.
func (s *SubmissionService) Submit(ctx context.Context, id, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	sub, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubmissionStatusSubmitted {
		s.logger.Warn("rejected submit", "code", CodeAlreadySubmitted, "submissionId", id.Hex())
		return nil, ruleError(CodeAlreadySubmitted, "This submission has already been submitted")
	}
	sub.Normalize()
	sub.ApplyPlannedFallback()
	if !sub.PointsWithinBudget() {
		s.logger.Warn("rejected submit", "code", CodeInvalidPoints, "submissionId", id.Hex())
		return nil, ruleError(CodeInvalidPoints, "Cannot submit: completed story points exceed planned points")
	}

	now := s.Now()
	if err := s.submissions.SetStatus(ctx, id, models.SubmissionStatusSubmitted, &now, now); err != nil {
		s.logger.Error("failed to submit submission", "submissionId", id.Hex(), "error", err)
		return nil, wrapStoreErr("submit", "submission", err)
	}
	sub.Status = models.SubmissionStatusSubmitted
	sub.SubmittedAt = &now
	sub.UpdatedAt = now

	s.logger.Info("submission submitted", "submissionId", id.Hex(), "userId", userID.Hex(),
		"planned", sub.StoryPointsPlanned, "completed", sub.StoryPointsCompleted)
	s.afterMutation(ctx, "submitted", sub)
	return sub, nil
}

// Reopen returns a Submitted or Reviewed submission to Draft.
func (s *SubmissionService) Reopen(ctx context.Context, id, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	sub, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Status.Reopenable() {
		s.logger.Warn("rejected reopen", "code", CodeCannotReopen, "submissionId", id.Hex(), "status", sub.Status)
		return nil, ruleError(CodeCannotReopen, "Only submitted or reviewed submissions can be reopened")
	}

	now := s.Now()
	if err := s.submissions.SetStatus(ctx, id, models.SubmissionStatusDraft, nil, now); err != nil {
		s.logger.Error("failed to reopen submission", "submissionId", id.Hex(), "error", err)
		return nil, wrapStoreErr("reopen", "submission", err)
	}
	sub.Status = models.SubmissionStatusDraft
	sub.SubmittedAt = nil
	sub.UpdatedAt = now

	s.logger.Info("submission reopened", "submissionId", id.Hex(), "userId", userID.Hex())
	s.afterMutation(ctx, "reopened", sub)
	return sub, nil
}

// Delete removes the caller's Draft submission. It reports false without
// saying why when the submission is missing, foreign or not a Draft.
func (s *SubmissionService) Delete(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	sub, err := s.submissions.FindOwned(ctx, id, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("failed to load submission", "submissionId", id.Hex(), "error", err)
		return false, wrapStoreErr("find", "submission", err)
	}
	deleted, err := s.submissions.DeleteDraft(ctx, id, userID)
	if err != nil {
		s.logger.Error("failed to delete submission", "submissionId", id.Hex(), "error", err)
		return false, wrapStoreErr("delete", "submission", err)
	}
	if deleted {
		s.logger.Info("submission deleted", "submissionId", id.Hex(), "userId", userID.Hex())
		s.afterMutation(ctx, "deleted", sub)
	}
	return deleted, nil
}

func (s *SubmissionService) GetForSprint(ctx context.Context, sprintID, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	sub, err := s.submissions.FindBySprintAndUser(ctx, sprintID, userID)
	if err != nil {
		return nil, s.readErr("find", err)
	}
	return sub, nil
}

// GetOrTemplate returns the caller's submission, or a template for a new
// Draft when none exists. A missing sprint is ErrNotFound.
func (s *SubmissionService) GetOrTemplate(ctx context.Context, sprintID, userID primitive.ObjectID) (SubmissionResult, error) {
	sprint, err := s.sprints.FindByID(ctx, sprintID)
	if err != nil {
		return nil, s.readErr("find", err)
	}
	sub, err := s.submissions.FindBySprintAndUser(ctx, sprintID, userID)
	switch {
	case err == nil:
		sub.Normalize()
		return FoundSubmission{Submission: sub}, nil
	case errors.Is(err, ErrNotFound):
		return SubmissionTemplate{SprintID: sprintID, ProjectID: sprint.ProjectID, UserID: userID}, nil
	default:
		return nil, s.readErr("find", err)
	}
}

func (s *SubmissionService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SprintSubmission, error) {
	sub, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, s.readErr("find", err)
	}
	return sub, nil
}

func (s *SubmissionService) ListBySprint(ctx context.Context, sprintID primitive.ObjectID) ([]*models.SprintSubmission, error) {
	subs, err := s.submissions.ListBySprint(ctx, sprintID)
	if err != nil {
		return nil, s.readErr("list", err)
	}
	return subs, nil
}

// ListByUser returns the user's submissions, newest first.
func (s *SubmissionService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.SprintSubmission, error) {
	subs, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.readErr("list", err)
	}
	return subs, nil
}

func (s *SubmissionService) findOwned(ctx context.Context, id, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	sub, err := s.submissions.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, s.readErr("find", err)
	}
	return sub, nil
}

func (s *SubmissionService) readErr(op string, err error) error {
	if !errors.Is(err, ErrNotFound) {
		s.logger.Error("submission read failed", "op", op, "error", err)
	}
	return wrapStoreErr(op, "submission", err)
}

// afterMutation drops the sprint's cached report and publishes an event.
// Neither failure affects the caller.
func (s *SubmissionService) afterMutation(ctx context.Context, action string, sub *models.SprintSubmission) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sub.SprintID); err != nil {
			s.logger.Warn("failed to invalidate report cache", "sprintId", sub.SprintID.Hex(), "error", err)
		}
	}
	if s.events != nil {
		ev := models.SubmissionEvent{
			Action:       action,
			SubmissionID: sub.ID,
			SprintID:     sub.SprintID,
			UserID:       sub.UserID,
			Status:       sub.Status,
			At:           s.Now(),
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			s.logger.Warn("failed to publish submission event", "event", ev.Type(), "error", err)
		}
	}
}
