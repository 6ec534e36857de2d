package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionSource records which data produced a sprint's completion figure.
type CompletionSource string

const (
	CompletionSourceSubmitted CompletionSource = "Submissions:Submitted"
	CompletionSourceDraft     CompletionSource = "Submissions:Draft"
	CompletionSourceTasks     CompletionSource = "Tasks"
)

type SprintSummary struct {
	ID                   primitive.ObjectID `json:"id"`
	Name                 string             `json:"name"`
	ProjectName          string             `json:"projectName"`
	Status               SprintStatus       `json:"status"`
	EndDate              time.Time          `json:"endDate"`
	CompletionPercentage float64            `json:"completionPercentage"`
	DaysRemaining        int                `json:"daysRemaining"`
	CompletionSource     CompletionSource   `json:"completionSource"`
}

type DashboardStats struct {
	TotalProjects   int             `json:"totalProjects"`
	ActiveSprints   int             `json:"activeSprints"`
	TotalTasks      int             `json:"totalTasks"`
	TasksInProgress int             `json:"tasksInProgress"`
	TasksCompleted  int             `json:"tasksCompleted"`
	TasksBlocked    int             `json:"tasksBlocked"`
	RecentSprints   []SprintSummary `json:"recentSprints"`
	MyTasks         []*Task         `json:"myTasks"`
}
