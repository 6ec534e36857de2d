package tracker

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// TokenIssuer signs access tokens for users.
type TokenIssuer interface {
	GenerateToken(user *models.User) (token string, expiresAt time.Time, err error)
}

type RegisterRequest struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Role      models.UserRole `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      models.UserSummary `json:"user"`
}

type AuthService struct {
	clock
	users  UserStore
	tokens TokenIssuer
	cost   int
	logger *slog.Logger
}

func NewAuthService(users UserStore, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		logger: componentLogger(logger, "AuthService"),
	}
}

// SetHashCost changes the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) SetHashCost(cost int) { s.cost = cost }

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var errs []string
	if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		errs = append(errs, "password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		errs = append(errs, "firstName and lastName are required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	role := req.Role
	if role == "" {
		role = models.UserRoleDeveloper
	}
	if !role.IsValid() {
		return nil, ruleError(CodeInvalidRole, "Unknown role "+string(role))
	}

	switch _, err := s.users.FindByEmail(ctx, email); {
	case err == nil:
		s.logger.Warn("registration rejected", "code", CodeEmailTaken, "email", email)
		return nil, ruleError(CodeEmailTaken, "Email is already registered")
	case !errors.Is(err, ErrNotFound):
		s.logger.Error("failed to look up user", "email", email, "error", err)
		return nil, wrapStoreErr("find", "user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return nil, ruleError(CodeEmailTaken, "Email is already registered")
		}
		s.logger.Error("failed to insert user", "email", email, "error", err)
		return nil, wrapStoreErr("insert", "user", err)
	}
	s.logger.Info("user registered", "userId", user.ID.Hex(), "role", role)
	return s.issue(user)
}

// Login verifies credentials and stamps the last login time. Unknown
// emails, wrong passwords and inactive accounts all fail the same way.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to look up user", "email", email, "error", err)
		return nil, wrapStoreErr("find", "user", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Warn("login failed", "email", email)
		return nil, ruleError(CodeInvalidCredentials, "Invalid email or password")
	}
	if !user.IsActive {
		s.logger.Warn("login for inactive user", "userId", user.ID.Hex())
		return nil, ruleError(CodeInvalidCredentials, "Invalid email or password")
	}

	now := s.Now()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to stamp last login", "userId", user.ID.Hex(), "error", err)
	}
	user.LastLoginAt = &now
	s.logger.Info("user logged in", "userId", user.ID.Hex())
	return s.issue(user)
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.UserSummary, error) {
	u, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	summary := u.Summary()
	return &summary, nil
}

// Refresh issues a fresh token for a caller whose account is still active.
func (s *AuthService) Refresh(ctx context.Context, userID primitive.ObjectID) (*AuthResponse, error) {
	u, err := loadActor(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		s.logger.Warn("refresh for inactive user", "userId", userID.Hex())
		return nil, ErrUnauthenticated
	}
	return s.issue(u)
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, exp, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, ExpiresAt: exp, User: user.Summary()}, nil
}
