package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxPoints        = 1000
	maxHours         = 1000
	maxUserStories   = 100
	maxFeatures      = 100
	maxImpediments   = 50
	maxAppreciations = 50
)

type UserStoryInput struct {
	StoryID     *string `json:"storyId"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StoryPoints int     `json:"storyPoints"`
	Status      *string `json:"status"`
	Remarks     *string `json:"remarks"`
}

type FeatureInput struct {
	FeatureName *string `json:"featureName"`
	Description *string `json:"description"`
	Module      *string `json:"module"`
	Status      *string `json:"status"`
}

type ImpedimentInput struct {
	Description  *string    `json:"description"`
	Category     *string    `json:"category"`
	Impact       *string    `json:"impact"`
	Status       *string    `json:"status"`
	Resolution   *string    `json:"resolution"`
	ReportedDate *time.Time `json:"reportedDate"`
	ResolvedDate *time.Time `json:"resolvedDate"`
}

type AppreciationInput struct {
	AppreciatedUserID   *string `json:"appreciatedUserId"`
	AppreciatedUserName *string `json:"appreciatedUserName"`
	Reason              *string `json:"reason"`
	Category            *string `json:"category"`
}

// SubmissionInput is the create-or-update payload for a sprint submission.
// Nil collections mean "none".
type SubmissionInput struct {
	SprintID             primitive.ObjectID  `json:"sprintId"`
	ProjectID            *primitive.ObjectID `json:"projectId,omitempty"`
	StoryPointsCompleted int                 `json:"storyPointsCompleted"`
	StoryPointsPlanned   int                 `json:"storyPointsPlanned"`
	HoursWorked          float64             `json:"hoursWorked"`
	UserStories          []UserStoryInput    `json:"userStories"`
	FeaturesDelivered    []FeatureInput      `json:"featuresDelivered"`
	Impediments          []ImpedimentInput   `json:"impediments"`
	Appreciations        []AppreciationInput `json:"appreciations"`
	Achievements         *string             `json:"achievements"`
	Learnings            *string             `json:"learnings"`
	NextSprintGoals      *string             `json:"nextSprintGoals"`
	AdditionalNotes      *string             `json:"additionalNotes"`
}

// Validate checks the payload shape and returns one message per violation.
func (in *SubmissionInput) Validate() []string {
	var errs []string
	if in.StoryPointsCompleted < 0 || in.StoryPointsCompleted > maxPoints {
		errs = append(errs, fmt.Sprintf("storyPointsCompleted must be between 0 and %d", maxPoints))
	}
	if in.StoryPointsPlanned < 0 || in.StoryPointsPlanned > maxPoints {
		errs = append(errs, fmt.Sprintf("storyPointsPlanned must be between 0 and %d", maxPoints))
	}
	if in.HoursWorked < 0 || in.HoursWorked > maxHours {
		errs = append(errs, fmt.Sprintf("hoursWorked must be between 0 and %d", maxHours))
	}
	if len(in.UserStories) > maxUserStories {
		errs = append(errs, fmt.Sprintf("at most %d user stories are allowed", maxUserStories))
	}
	if len(in.FeaturesDelivered) > maxFeatures {
		errs = append(errs, fmt.Sprintf("at most %d features are allowed", maxFeatures))
	}
	if len(in.Impediments) > maxImpediments {
		errs = append(errs, fmt.Sprintf("at most %d impediments are allowed", maxImpediments))
	}
	if len(in.Appreciations) > maxAppreciations {
		errs = append(errs, fmt.Sprintf("at most %d appreciations are allowed", maxAppreciations))
	}
	return errs
}

// ToSubmission builds a Draft submission from the payload. Entries missing
// required fields are dropped and every string is trimmed and capped.
func (in *SubmissionInput) ToSubmission(now time.Time) *SprintSubmission {
	s := &SprintSubmission{
		SprintID:             in.SprintID,
		StoryPointsCompleted: in.StoryPointsCompleted,
		StoryPointsPlanned:   in.StoryPointsPlanned,
		HoursWorked:          in.HoursWorked,
		Achievements:         clip(in.Achievements, "", maxFreeTextLen),
		Learnings:            clip(in.Learnings, "", maxFreeTextLen),
		NextSprintGoals:      clip(in.NextSprintGoals, "", maxFreeTextLen),
		AdditionalNotes:      clip(in.AdditionalNotes, "", maxFreeTextLen),
		Status:               SubmissionStatusDraft,
	}
	if in.ProjectID != nil {
		s.ProjectID = *in.ProjectID
	}
	for _, raw := range in.UserStories {
		if e, ok := NewUserStoryEntry(raw); ok {
			s.UserStories = append(s.UserStories, e)
		}
	}
	for _, raw := range in.FeaturesDelivered {
		if e, ok := NewFeatureEntry(raw); ok {
			s.FeaturesDelivered = append(s.FeaturesDelivered, e)
		}
	}
	for _, raw := range in.Impediments {
		if e, ok := NewImpedimentEntry(raw, now); ok {
			s.Impediments = append(s.Impediments, e)
		}
	}
	for _, raw := range in.Appreciations {
		if e, ok := NewAppreciationEntry(raw); ok {
			s.Appreciations = append(s.Appreciations, e)
		}
	}
	s.Normalize()
	return s
}
