package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestNewUserStoryEntry(t *testing.T) {
	e, ok := NewUserStoryEntry(UserStoryInput{
		StoryID:     strPtr("  US-1  "),
		Title:       strPtr(strings.Repeat("x", 600)),
		StoryPoints: 250,
	})
	require.True(t, ok)
	assert.Equal(t, "US-1", e.StoryID)
	assert.Len(t, e.Title, 500)
	assert.Equal(t, 100, e.StoryPoints)
	assert.Equal(t, "Completed", e.Status)
	assert.NotEmpty(t, e.ID)

	_, ok = NewUserStoryEntry(UserStoryInput{StoryID: strPtr("US-2"), Title: strPtr("   ")})
	assert.False(t, ok)

	e, _ = NewUserStoryEntry(UserStoryInput{StoryID: strPtr("US-3"), Title: strPtr("t"), StoryPoints: -4})
	assert.Equal(t, 0, e.StoryPoints)
}

func TestNewImpedimentEntryDefaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e, ok := NewImpedimentEntry(ImpedimentInput{Description: strPtr("CI is down")}, now)
	require.True(t, ok)
	assert.Equal(t, "Technical", e.Category)
	assert.Equal(t, "Medium", e.Impact)
	assert.Equal(t, "Open", e.Status)
	assert.Equal(t, now, e.ReportedDate)
	assert.True(t, e.IsOpen())

	e.Status = "oPeN"
	assert.True(t, e.IsOpen())

	_, ok = NewImpedimentEntry(ImpedimentInput{}, now)
	assert.False(t, ok)
}

func TestNewAppreciationEntry(t *testing.T) {
	id := primitive.NewObjectID()
	e, ok := NewAppreciationEntry(AppreciationInput{
		AppreciatedUserID:   strPtr(id.Hex()),
		AppreciatedUserName: strPtr("Grace"),
		Reason:              strPtr("reviews"),
	})
	require.True(t, ok)
	require.NotNil(t, e.AppreciatedUserID)
	assert.Equal(t, id, *e.AppreciatedUserID)
	assert.Equal(t, "Teamwork", e.Category)

	e, ok = NewAppreciationEntry(AppreciationInput{
		AppreciatedUserID:   strPtr(id.Hex()),
		AppreciatedUserName: strPtr(" Team "),
		Reason:              strPtr("shipping"),
	})
	require.True(t, ok)
	assert.Nil(t, e.AppreciatedUserID)

	_, ok = NewAppreciationEntry(AppreciationInput{AppreciatedUserName: strPtr("Grace")})
	assert.False(t, ok)
}

func TestSubmissionInputValidate(t *testing.T) {
	in := SubmissionInput{StoryPointsPlanned: 10, StoryPointsCompleted: 5, HoursWorked: 40}
	assert.Empty(t, in.Validate())

	in = SubmissionInput{
		StoryPointsPlanned:   1001,
		StoryPointsCompleted: -1,
		HoursWorked:          1000.5,
		Impediments:          make([]ImpedimentInput, 51),
	}
	assert.Len(t, in.Validate(), 4)
}

func TestToSubmissionDropsIncompleteEntries(t *testing.T) {
	in := SubmissionInput{
		SprintID: primitive.NewObjectID(),
		UserStories: []UserStoryInput{
			{StoryID: strPtr("US-1"), Title: strPtr("Login"), StoryPoints: 3},
			{StoryID: strPtr(""), Title: strPtr("orphan")},
		},
		FeaturesDelivered: []FeatureInput{{Module: strPtr("auth")}},
		Achievements:      strPtr(strings.Repeat("a", 6000)),
	}
	s := in.ToSubmission(time.Now())
	assert.Len(t, s.UserStories, 1)
	assert.NotNil(t, s.FeaturesDelivered)
	assert.Empty(t, s.FeaturesDelivered)
	assert.NotNil(t, s.Impediments)
	assert.Len(t, s.Achievements, 5000)
	assert.Equal(t, SubmissionStatusDraft, s.Status)
}

func TestApplyPlannedFallback(t *testing.T) {
	s := &SprintSubmission{UserStories: []UserStoryEntry{{StoryPoints: 3}, {StoryPoints: 4}}}
	assert.True(t, s.ApplyPlannedFallback())
	assert.Equal(t, 7, s.StoryPointsPlanned)

	s = &SprintSubmission{StoryPointsPlanned: 2, UserStories: []UserStoryEntry{{StoryPoints: 3}}}
	assert.False(t, s.ApplyPlannedFallback())
	assert.Equal(t, 2, s.StoryPointsPlanned)

	s = &SprintSubmission{}
	assert.False(t, s.ApplyPlannedFallback())
}
