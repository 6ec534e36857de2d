package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SprintReportData rolls up every submission of a sprint.
type SprintReportData struct {
	SprintID                  primitive.ObjectID   `json:"sprintId"`
	SprintName                string               `json:"sprintName"`
	SprintNumber              int                  `json:"sprintNumber"`
	StartDate                 time.Time            `json:"startDate"`
	EndDate                   time.Time            `json:"endDate"`
	TotalTeamMembers          int                  `json:"totalTeamMembers"`
	TotalStoryPointsPlanned   int                  `json:"totalStoryPointsPlanned"`
	TotalStoryPointsCompleted int                  `json:"totalStoryPointsCompleted"`
	CompletionPercentage      float64              `json:"completionPercentage"`
	TotalHoursWorked          float64              `json:"totalHoursWorked"`
	TotalUserStories          int                  `json:"totalUserStories"`
	TotalFeatures             int                  `json:"totalFeatures"`
	TotalImpediments          int                  `json:"totalImpediments"`
	OpenImpediments           int                  `json:"openImpediments"`
	TotalAppreciations        int                  `json:"totalAppreciations"`
	UserBreakdown             []UserSprintSummary  `json:"userBreakdown"`
	UserStories               []UserStoryReport    `json:"userStories"`
	Features                  []FeatureReport      `json:"features"`
	Impediments               []ImpedimentReport   `json:"impediments"`
	Appreciations             []AppreciationReport `json:"appreciations"`
}

type UserSprintSummary struct {
	UserID               primitive.ObjectID `json:"userId"`
	UserName             string             `json:"userName"`
	StoryPointsPlanned   int                `json:"storyPointsPlanned"`
	StoryPointsCompleted int                `json:"storyPointsCompleted"`
	HoursWorked          float64            `json:"hoursWorked"`
	UserStoriesCount     int                `json:"userStoriesCount"`
	FeaturesCount        int                `json:"featuresCount"`
	ImpedimentsCount     int                `json:"impedimentsCount"`
	AppreciationsGiven   int                `json:"appreciationsGiven"`
	SubmissionStatus     string             `json:"submissionStatus"`
}

type UserStoryReport struct {
	StoryID     string `json:"storyId"`
	Title       string `json:"title"`
	StoryPoints int    `json:"storyPoints"`
	Status      string `json:"status"`
	ReportedBy  string `json:"reportedBy"`
}

type FeatureReport struct {
	FeatureName string `json:"featureName"`
	Description string `json:"description,omitempty"`
	Module      string `json:"module,omitempty"`
	Status      string `json:"status"`
	DeliveredBy string `json:"deliveredBy"`
}

type ImpedimentReport struct {
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Impact       string    `json:"impact"`
	Status       string    `json:"status"`
	Resolution   string    `json:"resolution,omitempty"`
	ReportedBy   string    `json:"reportedBy"`
	ReportedDate time.Time `json:"reportedDate"`
}

type AppreciationReport struct {
	AppreciatedUserName string `json:"appreciatedUserName"`
	Reason              string `json:"reason"`
	Category            string `json:"category"`
	GivenBy             string `json:"givenBy"`
}
