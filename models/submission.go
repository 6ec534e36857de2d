package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmissionStatus string

const (
	SubmissionStatusDraft     SubmissionStatus = "Draft"
	SubmissionStatusSubmitted SubmissionStatus = "Submitted"
	SubmissionStatusReviewed  SubmissionStatus = "Reviewed"
)

// Reopenable reports whether a submission in status s may go back to Draft.
func (s SubmissionStatus) Reopenable() bool {
	return s == SubmissionStatusSubmitted || s == SubmissionStatusReviewed
}

const (
	maxStoryIDLen          = 50
	maxTitleLen            = 500
	maxDescriptionLen      = 2000
	maxRemarksLen          = 1000
	maxModuleLen           = 200
	maxLabelLen            = 50
	maxAppreciatedNameLen  = 200
	maxFreeTextLen         = 5000
	maxStoryPointsPerStory = 100
)

// SprintSubmission is one user's report of work for one sprint.
// A (SprintID, UserID) pair identifies at most one document.
type SprintSubmission struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SprintID  primitive.ObjectID `bson:"sprintId" json:"sprintId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ProjectID primitive.ObjectID `bson:"projectId" json:"projectId"`

	StoryPointsCompleted int     `bson:"storyPointsCompleted" json:"storyPointsCompleted"`
	StoryPointsPlanned   int     `bson:"storyPointsPlanned" json:"storyPointsPlanned"`
	HoursWorked          float64 `bson:"hoursWorked" json:"hoursWorked"`

	UserStories       []UserStoryEntry    `bson:"userStories" json:"userStories"`
	FeaturesDelivered []FeatureEntry      `bson:"featuresDelivered" json:"featuresDelivered"`
	Impediments       []ImpedimentEntry   `bson:"impediments" json:"impediments"`
	Appreciations     []AppreciationEntry `bson:"appreciations" json:"appreciations"`

	Achievements    string `bson:"achievements" json:"achievements"`
	Learnings       string `bson:"learnings" json:"learnings"`
	NextSprintGoals string `bson:"nextSprintGoals" json:"nextSprintGoals"`
	AdditionalNotes string `bson:"additionalNotes" json:"additionalNotes"`

	Status      SubmissionStatus `bson:"submissionStatus" json:"status"`
	SubmittedAt *time.Time       `bson:"submittedAt" json:"submittedAt"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Normalize replaces nil collections with empty ones.
func (s *SprintSubmission) Normalize() {
	if s.UserStories == nil {
		s.UserStories = []UserStoryEntry{}
	}
	if s.FeaturesDelivered == nil {
		s.FeaturesDelivered = []FeatureEntry{}
	}
	if s.Impediments == nil {
		s.Impediments = []ImpedimentEntry{}
	}
	if s.Appreciations == nil {
		s.Appreciations = []AppreciationEntry{}
	}
}

// StoryPointsFromStories sums the non-negative points of every user story.
func (s *SprintSubmission) StoryPointsFromStories() int {
	total := 0
	for _, us := range s.UserStories {
		if us.StoryPoints > 0 {
			total += us.StoryPoints
		}
	}
	return total
}

// ApplyPlannedFallback derives the planned total from the user stories when
// the caller left it unset. It returns true when the total was recomputed.
func (s *SprintSubmission) ApplyPlannedFallback() bool {
	if s.StoryPointsPlanned > 0 || len(s.UserStories) == 0 {
		return false
	}
	s.StoryPointsPlanned = s.StoryPointsFromStories()
	return true
}

// PointsWithinBudget reports whether completed points do not exceed planned.
func (s *SprintSubmission) PointsWithinBudget() bool {
	return s.StoryPointsCompleted <= s.StoryPointsPlanned
}

type UserStoryEntry struct {
	ID          string `bson:"id" json:"id"`
	StoryID     string `bson:"storyId" json:"storyId"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	StoryPoints int    `bson:"storyPoints" json:"storyPoints"`
	Status      string `bson:"status" json:"status"`
	Remarks     string `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

type FeatureEntry struct {
	ID          string `bson:"id" json:"id"`
	FeatureName string `bson:"featureName" json:"featureName"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Module      string `bson:"module,omitempty" json:"module,omitempty"`
	Status      string `bson:"status" json:"status"`
}

type ImpedimentEntry struct {
	ID           string     `bson:"id" json:"id"`
	Description  string     `bson:"description" json:"description"`
	Category     string     `bson:"category" json:"category"`
	Impact       string     `bson:"impact" json:"impact"`
	Status       string     `bson:"status" json:"status"`
	Resolution   string     `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ReportedDate time.Time  `bson:"reportedDate" json:"reportedDate"`
	ResolvedDate *time.Time `bson:"resolvedDate,omitempty" json:"resolvedDate,omitempty"`
}

// IsOpen compares the free-text status case-insensitively.
func (i ImpedimentEntry) IsOpen() bool {
	return strings.EqualFold(i.Status, "Open")
}

type AppreciationEntry struct {
	ID                  string              `bson:"id" json:"id"`
	AppreciatedUserID   *primitive.ObjectID `bson:"appreciatedUserId" json:"appreciatedUserId"`
	AppreciatedUserName string              `bson:"appreciatedUserName" json:"appreciatedUserName"`
	Reason              string              `bson:"reason" json:"reason"`
	Category            string              `bson:"category" json:"category"`
}

// NewUserStoryEntry builds a story entry from raw input. The second return
// is false when the story id or title is blank.
func NewUserStoryEntry(in UserStoryInput) (UserStoryEntry, bool) {
	e := UserStoryEntry{
		ID:          uuid.NewString(),
		StoryID:     clip(in.StoryID, "", maxStoryIDLen),
		Title:       clip(in.Title, "", maxTitleLen),
		Description: clip(in.Description, "", maxDescriptionLen),
		StoryPoints: clamp(in.StoryPoints, 0, maxStoryPointsPerStory),
		Status:      clip(in.Status, "Completed", maxLabelLen),
		Remarks:     clip(in.Remarks, "", maxRemarksLen),
	}
	return e, e.StoryID != "" && e.Title != ""
}

func NewFeatureEntry(in FeatureInput) (FeatureEntry, bool) {
	e := FeatureEntry{
		ID:          uuid.NewString(),
		FeatureName: clip(in.FeatureName, "", maxTitleLen),
		Description: clip(in.Description, "", maxDescriptionLen),
		Module:      clip(in.Module, "", maxModuleLen),
		Status:      clip(in.Status, "Delivered", maxLabelLen),
	}
	return e, e.FeatureName != ""
}

// NewImpedimentEntry stamps ReportedDate with now when the input omits it.
func NewImpedimentEntry(in ImpedimentInput, now time.Time) (ImpedimentEntry, bool) {
	e := ImpedimentEntry{
		ID:           uuid.NewString(),
		Description:  clip(in.Description, "", maxDescriptionLen),
		Category:     clip(in.Category, "Technical", maxLabelLen),
		Impact:       clip(in.Impact, "Medium", maxLabelLen),
		Status:       clip(in.Status, "Open", maxLabelLen),
		Resolution:   clip(in.Resolution, "", maxDescriptionLen),
		ReportedDate: now,
		ResolvedDate: in.ResolvedDate,
	}
	if in.ReportedDate != nil {
		e.ReportedDate = *in.ReportedDate
	}
	return e, e.Description != ""
}

// NewAppreciationEntry drops the user reference for whole-team appreciations.
func NewAppreciationEntry(in AppreciationInput) (AppreciationEntry, bool) {
	e := AppreciationEntry{
		ID:                  uuid.NewString(),
		AppreciatedUserName: clip(in.AppreciatedUserName, "", maxAppreciatedNameLen),
		Reason:              clip(in.Reason, "", maxDescriptionLen),
		Category:            clip(in.Category, "Teamwork", maxLabelLen),
	}
	if in.AppreciatedUserID != nil && e.AppreciatedUserName != "Team" {
		if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(*in.AppreciatedUserID)); err == nil {
			e.AppreciatedUserID = &id
		}
	}
	return e, e.AppreciatedUserName != "" && e.Reason != ""
}

// clip trims s (or def when s is nil) and caps it at max runes.
func clip(s *string, def string, max int) string {
	v := def
	if s != nil {
		v = *s
	}
	v = strings.TrimSpace(v)
	if r := []rune(v); len(r) > max {
		v = string(r[:max])
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
