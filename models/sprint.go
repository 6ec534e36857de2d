package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SprintStatus string

const (
	SprintStatusPlanning  SprintStatus = "Planning"
	SprintStatusActive    SprintStatus = "Active"
	SprintStatusCompleted SprintStatus = "Completed"
	SprintStatusCancelled SprintStatus = "Cancelled"
)

var sprintTransitions = map[SprintStatus][]SprintStatus{
	SprintStatusPlanning: {SprintStatusActive, SprintStatusCancelled},
	SprintStatusActive:   {SprintStatusCompleted, SprintStatusCancelled},
}

func (s SprintStatus) IsValid() bool {
	switch s {
	case SprintStatusPlanning, SprintStatusActive, SprintStatusCompleted, SprintStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a sprint may move from s to target.
func (s SprintStatus) CanTransition(target SprintStatus) bool {
	for _, allowed := range sprintTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type SprintCapacity struct {
	PlannedStoryPoints   int     `bson:"plannedPoints" json:"plannedStoryPoints"`
	CommittedStoryPoints int     `bson:"committedPoints" json:"committedStoryPoints"`
	TotalAvailableHours  float64 `bson:"totalHours" json:"totalAvailableHours"`
}

type SprintRetrospective struct {
	WhatWentWell     []string `bson:"whatWentWell" json:"whatWentWell"`
	WhatCouldImprove []string `bson:"whatCouldImprove" json:"whatCouldImprove"`
	ActionItems      []string `bson:"actionItems" json:"actionItems"`
	TeamMorale       int      `bson:"teamMorale" json:"teamMorale"`
	Notes            *string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Sprint struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProjectID      primitive.ObjectID   `bson:"projectId" json:"projectId"`
	Name           string               `bson:"name" json:"name"`
	Goal           *string              `bson:"goal,omitempty" json:"goal,omitempty"`
	SprintNumber   int                  `bson:"sprintNumber" json:"sprintNumber"`
	Status         SprintStatus         `bson:"status" json:"status"`
	StartDate      time.Time            `bson:"startDate" json:"startDate"`
	EndDate        time.Time            `bson:"endDate" json:"endDate"`
	Capacity       SprintCapacity       `bson:"capacity" json:"capacity"`
	ActualVelocity *int                 `bson:"velocity,omitempty" json:"actualVelocity,omitempty"`
	CreatedBy      primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
	StartedAt      *time.Time           `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt    *time.Time           `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Retrospective  *SprintRetrospective `bson:"retrospective,omitempty" json:"retrospective,omitempty"`
}

type CreateSprintRequest struct {
	ProjectID primitive.ObjectID `json:"projectId"`
	Name      string             `json:"name"`
	Goal      *string            `json:"goal,omitempty"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
}

// UpdateSprintRequest changes only the fields that are set. A Status
// change runs the matching start, complete or cancel transition.
type UpdateSprintRequest struct {
	Name      *string         `json:"name,omitempty"`
	Goal      *string         `json:"goal,omitempty"`
	Status    *SprintStatus   `json:"status,omitempty"`
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	Capacity  *SprintCapacity `json:"capacity,omitempty"`
}

type SprintStats struct {
	TotalTasks           int     `json:"totalTasks"`
	CompletedTasks       int     `json:"completedTasks"`
	TotalStoryPoints     int     `json:"totalStoryPoints"`
	CompletedStoryPoints int     `json:"completedStoryPoints"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

// SprintDetail is a sprint together with task-derived statistics.
type SprintDetail struct {
	*Sprint
	Stats SprintStats `json:"stats"`
}

type BurndownPoint struct {
	Date   time.Time `json:"date"`
	Points float64   `json:"points"`
}

type BurndownData struct {
	SprintID primitive.ObjectID `json:"sprintId"`
	Ideal    []BurndownPoint    `json:"ideal"`
	Actual   []BurndownPoint    `json:"actual"`
}

type SprintVelocity struct {
	SprintName      string `json:"sprintName"`
	CommittedPoints int    `json:"committedPoints"`
	CompletedPoints int    `json:"completedPoints"`
}

type VelocityData struct {
	ProjectID       primitive.ObjectID `json:"projectId"`
	Sprints         []SprintVelocity   `json:"sprints"`
	AverageVelocity float64            `json:"averageVelocity"`
}
