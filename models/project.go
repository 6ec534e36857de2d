package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusOnHold    ProjectStatus = "OnHold"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusArchived  ProjectStatus = "Archived"
)

type ProjectSettings struct {
	DefaultSprintDurationDays int `bson:"defaultSprintDuration" json:"defaultSprintDurationDays"`
}

type Project struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Key           string               `bson:"key" json:"key"`
	Description   *string              `bson:"description,omitempty" json:"description,omitempty"`
	OwnerID       primitive.ObjectID   `bson:"ownerId" json:"ownerId"`
	TeamMemberIDs []primitive.ObjectID `bson:"teamMembers" json:"teamMemberIds"`
	Status        ProjectStatus        `bson:"status" json:"status"`
	StartDate     *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	TargetEndDate *time.Time           `bson:"targetEndDate,omitempty" json:"targetEndDate,omitempty"`
	Settings      ProjectSettings      `bson:"settings" json:"settings"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	default:
		return false
	}
}

func (p *Project) HasMember(userID primitive.ObjectID) bool {
	for _, id := range p.TeamMemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type CreateProjectRequest struct {
	Name          string     `json:"name"`
	Key           string     `json:"key"`
	Description   *string    `json:"description,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	TargetEndDate *time.Time `json:"targetEndDate,omitempty"`
}

// UpdateProjectRequest changes only the fields that are set. A non-nil
// TeamMemberIDs replaces the whole team.
type UpdateProjectRequest struct {
	Name          *string              `json:"name,omitempty"`
	Description   *string              `json:"description,omitempty"`
	Status        *ProjectStatus       `json:"status,omitempty"`
	TargetEndDate *time.Time           `json:"targetEndDate,omitempty"`
	TeamMemberIDs []primitive.ObjectID `json:"teamMemberIds,omitempty"`
}

type SetMembersRequest struct {
	MemberIDs []primitive.ObjectID `json:"memberIds"`
}
