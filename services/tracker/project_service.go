package tracker

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultSprintDurationDays = 14
	maxProjectNameLen         = 200
	maxDescriptionLen         = 2000
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

type ProjectService struct {
	clock
	projects ProjectStore
	users    UserStore
	logger   *slog.Logger
}

func NewProjectService(projects ProjectStore, users UserStore, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		users:    users,
		logger:   componentLogger(logger, "ProjectService"),
	}
}

// Create registers a project owned by the caller. Developers may not create
// projects and keys are unique after upper-casing.
func (s *ProjectService) Create(ctx context.Context, req *models.CreateProjectRequest, userID primitive.ObjectID) (*models.Project, error) {
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if !models.CanCreateProject(actor) {
		s.logger.Warn("forbidden", "action", models.ActionCreateProject, "userId", userID.Hex(), "role", actor.Role)
		return nil, ErrForbidden
	}
	key := strings.ToUpper(strings.TrimSpace(req.Key))
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !projectKeyPattern.MatchString(key) {
		errs = append(errs, "key must be 2-10 letters or digits starting with a letter")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	switch _, err := s.projects.FindByKey(ctx, key); {
	case err == nil:
		return nil, ruleError(CodeDuplicateResource, "A project with key "+key+" already exists")
	case !errors.Is(err, ErrNotFound):
		return nil, s.storeFail("find", primitive.NilObjectID, err)
	}

	now := s.Now()
	p := &models.Project{
		ID:            primitive.NewObjectID(),
		Name:          strings.TrimSpace(req.Name),
		Key:           key,
		Description:   req.Description,
		OwnerID:       userID,
		TeamMemberIDs: []primitive.ObjectID{userID},
		Status:        models.ProjectStatusActive,
		StartDate:     req.StartDate,
		TargetEndDate: req.TargetEndDate,
		Settings:      models.ProjectSettings{DefaultSprintDurationDays: defaultSprintDurationDays},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return nil, ruleError(CodeDuplicateResource, "A project with key "+key+" already exists")
		}
		return nil, s.storeFail("insert", p.ID, err)
	}
	s.logger.Info("project created", "projectId", p.ID.Hex(), "key", key, "userId", userID.Hex())
	return p, nil
}

// Get returns the project when the caller may view it.
func (s *ProjectService) Get(ctx context.Context, id, userID primitive.ObjectID) (*models.Project, error) {
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	p, err := loadProject(ctx, s.projects, id)
	if err != nil {
		return nil, err
	}
	if !models.CanViewProject(actor, p) {
		return nil, ErrForbidden
	}
	return p, nil
}

// ListForUser returns every non-archived project for Admins and the
// caller's own projects otherwise.
func (s *ProjectService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Project, error) {
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	var projects []*models.Project
	if actor.Role == models.UserRoleAdmin {
		projects, err = s.projects.ListAll(ctx, false)
	} else {
		projects, err = s.projects.ListForUser(ctx, userID, false)
	}
	if err != nil {
		return nil, s.storeFail("list", userID, err)
	}
	return projects, nil
}

func (s *ProjectService) AddMember(ctx context.Context, projectID, memberID, userID primitive.ObjectID) (*models.Project, error) {
	p, err := s.authorize(ctx, projectID, userID, false)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, memberID); err != nil {
		return nil, wrapStoreErr("find", "user", err)
	}
	if p.HasMember(memberID) {
		return p, nil
	}
	p.TeamMemberIDs = append(p.TeamMemberIDs, memberID)
	p.UpdatedAt = s.Now()
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, s.storeFail("update", projectID, err)
	}
	s.logger.Info("member added", "projectId", projectID.Hex(), "memberId", memberID.Hex(), "userId", userID.Hex())
	return p, nil
}

// RemoveMember drops a member. The owner cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, memberID, userID primitive.ObjectID) (*models.Project, error) {
	p, err := s.authorize(ctx, projectID, userID, false)
	if err != nil {
		return nil, err
	}
	if memberID == p.OwnerID {
		return nil, ruleError(CodeOwnerRemoval, "The project owner cannot be removed from the team")
	}
	kept := p.TeamMemberIDs[:0]
	for _, id := range p.TeamMemberIDs {
		if id != memberID {
			kept = append(kept, id)
		}
	}
	p.TeamMemberIDs = kept
	p.UpdatedAt = s.Now()
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, s.storeFail("update", projectID, err)
	}
	s.logger.Info("member removed", "projectId", projectID.Hex(), "memberId", memberID.Hex(), "userId", userID.Hex())
	return p, nil
}

// Update applies the set fields of req. Any team member list is filtered to
// existing users and always keeps the owner.
func (s *ProjectService) Update(ctx context.Context, projectID primitive.ObjectID, req *models.UpdateProjectRequest, userID primitive.ObjectID) (*models.Project, error) {
	p, err := s.authorize(ctx, projectID, userID, false)
	if err != nil {
		return nil, err
	}
	var errs []string
	if req.Name != nil {
		if n := len(strings.TrimSpace(*req.Name)); n < 2 || n > maxProjectNameLen {
			errs = append(errs, "name must be between 2 and 200 characters")
		}
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		errs = append(errs, "description must be at most 2000 characters")
	}
	if req.Status != nil && !req.Status.IsValid() {
		errs = append(errs, "status is invalid")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.TargetEndDate != nil {
		p.TargetEndDate = req.TargetEndDate
	}
	if req.TeamMemberIDs != nil {
		if p.TeamMemberIDs, err = s.team(ctx, p.OwnerID, req.TeamMemberIDs); err != nil {
			return nil, s.storeFail("find", projectID, err)
		}
	}
	p.UpdatedAt = s.Now()
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, s.storeFail("update", projectID, err)
	}
	s.logger.Info("project updated", "projectId", projectID.Hex(), "userId", userID.Hex())
	return p, nil
}

// SetMembers replaces the team with the existing users among memberIDs,
// keeping the owner.
func (s *ProjectService) SetMembers(ctx context.Context, projectID primitive.ObjectID, memberIDs []primitive.ObjectID, userID primitive.ObjectID) (*models.Project, error) {
	if memberIDs == nil {
		return nil, &ValidationError{Errors: []string{"Member IDs are required"}}
	}
	return s.Update(ctx, projectID, &models.UpdateProjectRequest{TeamMemberIDs: memberIDs}, userID)
}

func (s *ProjectService) team(ctx context.Context, ownerID primitive.ObjectID, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	found, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	exists := make(map[primitive.ObjectID]bool, len(found))
	for _, u := range found {
		exists[u.ID] = true
	}
	team := []primitive.ObjectID{ownerID}
	seen := map[primitive.ObjectID]bool{ownerID: true}
	for _, id := range ids {
		if exists[id] && !seen[id] {
			seen[id] = true
			team = append(team, id)
		}
	}
	return team, nil
}

// Archive soft-deletes a project. Only its owner or an Admin may do this.
func (s *ProjectService) Archive(ctx context.Context, projectID, userID primitive.ObjectID) error {
	p, err := s.authorize(ctx, projectID, userID, true)
	if err != nil {
		return err
	}
	p.Status = models.ProjectStatusArchived
	p.UpdatedAt = s.Now()
	if err := s.projects.Update(ctx, p); err != nil {
		return s.storeFail("update", projectID, err)
	}
	s.logger.Info("project archived", "projectId", projectID.Hex(), "userId", userID.Hex())
	return nil
}

func (s *ProjectService) authorize(ctx context.Context, projectID, userID primitive.ObjectID, ownerOrAdmin bool) (*models.Project, error) {
	actor, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	p, err := loadProject(ctx, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	if !models.CanManageProject(actor, p, ownerOrAdmin) {
		s.logger.Warn("forbidden", "action", models.ActionManageProject, "userId", userID.Hex(), "projectId", projectID.Hex())
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *ProjectService) storeFail(op string, id primitive.ObjectID, err error) error {
	s.logger.Error("project store failure", "op", op, "id", id.Hex(), "error", err)
	return wrapStoreErr(op, "project", err)
}
