package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "Admin"
	UserRoleManager   UserRole = "Manager"
	UserRoleDeveloper UserRole = "Developer"
)

var RoleHierarchy = map[UserRole]int{
	UserRoleDeveloper: 1,
	UserRoleManager:   2,
	UserRoleAdmin:     3,
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Role         UserRole           `bson:"role" json:"role"`
	Avatar       *string            `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	LastLoginAt  *time.Time         `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsManager reports manager-level access (Admin or Manager).
func (u *User) IsManager() bool {
	return u.HasEqualOrHigherRole(UserRoleManager)
}

func (u *User) HasHigherRole(role UserRole) bool {
	return RoleHierarchy[u.Role] > RoleHierarchy[role]
}

func (u *User) HasEqualOrHigherRole(role UserRole) bool {
	return RoleHierarchy[u.Role] >= RoleHierarchy[role]
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleDeveloper:
		return true
	default:
		return false
	}
}

// UserSummary is the public projection of a user embedded in responses.
type UserSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Email     string             `json:"email"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	FullName  string             `json:"fullName"`
	Role      UserRole           `json:"role"`
	Avatar    *string            `json:"avatar,omitempty"`
	IsActive  bool               `json:"isActive"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Role:      u.Role,
		Avatar:    u.Avatar,
		IsActive:  u.IsActive,
	}
}

// Summaries projects users in order.
func Summaries(users []*User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}

// UserFilter selects active users. Search matches first name, last name or
// email case-insensitively.
type UserFilter struct {
	Search string
	Role   *UserRole
}

// UpdateUserRequest changes only the fields that are set. Role is honoured
// for Admins only.
type UpdateUserRequest struct {
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	Role      *UserRole `json:"role,omitempty"`
}
