package tracker

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	directoryLimit = 100
	maxNameLen     = 100
	maxAvatarLen   = 2000
)

// UserService is the user directory: lookups, profile edits and account
// activation.
type UserService struct {
	clock
	users    UserStore
	projects ProjectStore
	logger   *slog.Logger
}

func NewUserService(users UserStore, projects ProjectStore, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		projects: projects,
		logger:   componentLogger(logger, "UserService"),
	}
}

// List returns up to 100 active users matching f, by first then last name.
func (s *UserService) List(ctx context.Context, f models.UserFilter) ([]models.UserSummary, error) {
	users, err := s.users.Search(ctx, f, directoryLimit)
	if err != nil {
		return nil, s.storeFail("list", primitive.NilObjectID, err)
	}
	return models.Summaries(users), nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.UserSummary, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := u.Summary()
	return &summary, nil
}

// Update edits a profile. Callers may edit themselves; Admins may edit
// anyone and are the only ones whose role change is applied.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, req *models.UpdateUserRequest, callerID primitive.ObjectID) (*models.UserSummary, error) {
	actor, err := loadActor(ctx, s.users, callerID)
	if err != nil {
		return nil, err
	}
	if !models.CanUpdateUser(actor, id) {
		s.logger.Warn("forbidden", "action", models.ActionUpdateUser, "userId", callerID.Hex(), "targetId", id.Hex())
		return nil, ErrForbidden
	}
	if errs := validateUserUpdate(req); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := trimmed(req.FirstName); v != "" {
		u.FirstName = v
	}
	if v := trimmed(req.LastName); v != "" {
		u.LastName = v
	}
	if v := trimmed(req.Avatar); v != "" {
		u.Avatar = &v
	}
	if req.Role != nil && models.CanAdministerUsers(actor) {
		u.Role = *req.Role
	}
	u.UpdatedAt = s.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, s.storeFail("update", id, err)
	}
	s.logger.Info("user updated", "targetId", id.Hex(), "userId", callerID.Hex())
	summary := u.Summary()
	return &summary, nil
}

// Team lists the project's members by name. A project with no members
// falls back to the whole active directory.
func (s *UserService) Team(ctx context.Context, projectID primitive.ObjectID) ([]models.UserSummary, error) {
	p, err := loadProject(ctx, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	if len(p.TeamMemberIDs) == 0 {
		return s.List(ctx, models.UserFilter{})
	}
	users, err := s.users.FindByIDs(ctx, p.TeamMemberIDs)
	if err != nil {
		return nil, s.storeFail("list", projectID, err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].FirstName != users[j].FirstName {
			return users[i].FirstName < users[j].FirstName
		}
		return users[i].LastName < users[j].LastName
	})
	return models.Summaries(users), nil
}

// SetActive deactivates or reactivates an account. Admin only, and Admins
// cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, id primitive.ObjectID, active bool, callerID primitive.ObjectID) error {
	actor, err := loadActor(ctx, s.users, callerID)
	if err != nil {
		return err
	}
	if !models.CanAdministerUsers(actor) {
		s.logger.Warn("forbidden", "action", models.ActionAdminUser, "userId", callerID.Hex(), "targetId", id.Hex())
		return ErrForbidden
	}
	if !active && id == callerID {
		return ruleError(CodeSelfDeactivation, "You cannot deactivate your own account")
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = active
	u.UpdatedAt = s.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return s.storeFail("update", id, err)
	}
	s.logger.Info("user activation changed", "targetId", id.Hex(), "active", active, "userId", callerID.Hex())
	return nil
}

func (s *UserService) find(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, s.storeFail("find", id, err)
	}
	return u, nil
}

func (s *UserService) storeFail(op string, id primitive.ObjectID, err error) error {
	s.logger.Error("user store failure", "op", op, "id", id.Hex(), "error", err)
	return wrapStoreErr(op, "user", err)
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func validateUserUpdate(req *models.UpdateUserRequest) []string {
	if req == nil {
		return []string{"request body is required"}
	}
	var errs []string
	if len(trimmed(req.FirstName)) > maxNameLen || len(trimmed(req.LastName)) > maxNameLen {
		errs = append(errs, "names must be at most 100 characters")
	}
	if v := trimmed(req.Avatar); v != "" {
		u, err := url.ParseRequestURI(v)
		if err != nil || len(v) > maxAvatarLen || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, "avatar must be an http or https URL")
		}
	}
	if req.Role != nil && !req.Role.IsValid() {
		errs = append(errs, "role is invalid")
	}
	return errs
}
