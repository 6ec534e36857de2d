package tracker_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker/trackertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubRenderer struct{ calls int }

func (r *stubRenderer) Render(report *models.SprintReportData) ([]byte, error) {
	r.calls++
	return []byte("%PDF-1.3 " + report.SprintName), nil
}

func seedReportSprint(t *testing.T) (*trackertest.Store, *models.Sprint, *models.User, *models.User) {
	t.Helper()
	st := trackertest.New()
	a := st.SeedUser(models.UserRoleDeveloper, "Ana", "Alpha")
	b := st.SeedUser(models.UserRoleDeveloper, "Ben", "Beta")
	project := st.SeedProject("REP", a, b)
	sprint := st.SeedSprint(project, "Sprint 7", models.SprintStatusActive, t0)
	return st, sprint, a, b
}

func TestSprintReportAggregates(t *testing.T) {
	st, sprint, a, b := seedReportSprint(t)
	ghost := primitive.NewObjectID()

	st.PutSubmission(models.SprintSubmission{
		ID: primitive.NewObjectID(), SprintID: sprint.ID, UserID: a.ID,
		StoryPointsPlanned: 10, StoryPointsCompleted: 6, HoursWorked: 30,
		Status: models.SubmissionStatusSubmitted,
		UserStories: []models.UserStoryEntry{
			{StoryID: "US-1", Title: "one", StoryPoints: 3, Status: "Completed"},
			{StoryID: "US-2", Title: "two", StoryPoints: 3, Status: "Completed"},
		},
		Impediments: []models.ImpedimentEntry{
			{Description: "db", Status: "OPEN"},
			{Description: "vpn", Status: "Resolved"},
		},
		Appreciations: []models.AppreciationEntry{{AppreciatedUserName: "Team", Reason: "help"}},
	})
	st.PutSubmission(models.SprintSubmission{
		ID: primitive.NewObjectID(), SprintID: sprint.ID, UserID: b.ID,
		StoryPointsPlanned: 5, StoryPointsCompleted: 5, HoursWorked: 12.5,
		Status:            models.SubmissionStatusDraft,
		FeaturesDelivered: []models.FeatureEntry{{FeatureName: "SSO", Status: "Delivered"}},
		Impediments:       []models.ImpedimentEntry{{Description: "review lag", Status: "open"}},
	})
	st.PutSubmission(models.SprintSubmission{
		ID: primitive.NewObjectID(), SprintID: sprint.ID, UserID: ghost,
		Status:      models.SubmissionStatusDraft,
		UserStories: []models.UserStoryEntry{{StoryID: "US-9", Title: "orphan"}},
	})

	svc := tracker.NewReportService(st.Sprints(), st.Submissions(), st.Users(), nil)
	r, err := svc.SprintReport(context.Background(), sprint.ID)
	require.NoError(t, err)

	assert.Equal(t, "Sprint 7", r.SprintName)
	assert.Equal(t, 15, r.TotalStoryPointsPlanned)
	assert.Equal(t, 11, r.TotalStoryPointsCompleted)
	assert.Equal(t, 73.3, r.CompletionPercentage)
	assert.Equal(t, 42.5, r.TotalHoursWorked)
	assert.Equal(t, 3, r.TotalUserStories)
	assert.Equal(t, 1, r.TotalFeatures)
	assert.Equal(t, 3, r.TotalImpediments)
	assert.Equal(t, 2, r.OpenImpediments)
	assert.Equal(t, 1, r.TotalAppreciations)
	assert.Equal(t, 3, r.TotalTeamMembers)
	assert.Len(t, r.UserBreakdown, 3)
	assert.Len(t, r.UserStories, 3)

	reporters := map[string]string{}
	for _, us := range r.UserStories {
		reporters[us.StoryID] = us.ReportedBy
	}
	assert.Equal(t, "Ana Alpha", reporters["US-1"])
	assert.Equal(t, "Unknown", reporters["US-9"])
	assert.Equal(t, "Ben Beta", r.Features[0].DeliveredBy)
	assert.Equal(t, "Ana Alpha", r.Appreciations[0].GivenBy)
}

func TestSprintReportSumsDuplicateSubmissions(t *testing.T) {
	st, sprint, a, _ := seedReportSprint(t)
	st.PutSubmission(models.SprintSubmission{
		ID: primitive.NewObjectID(), SprintID: sprint.ID, UserID: a.ID,
		StoryPointsPlanned: 4, StoryPointsCompleted: 2, Status: models.SubmissionStatusDraft,
	})
	st.PutSubmission(models.SprintSubmission{
		ID: primitive.NewObjectID(), SprintID: sprint.ID, UserID: a.ID,
		StoryPointsPlanned: 6, StoryPointsCompleted: 6, Status: models.SubmissionStatusSubmitted,
	})

	svc := tracker.NewReportService(st.Sprints(), st.Submissions(), st.Users(), nil)
	r, err := svc.SprintReport(context.Background(), sprint.ID)
	require.NoError(t, err)

	require.Len(t, r.UserBreakdown, 1)
	row := r.UserBreakdown[0]
	assert.Equal(t, 10, row.StoryPointsPlanned)
	assert.Equal(t, 8, row.StoryPointsCompleted)
	assert.ElementsMatch(t, []string{"Draft", "Submitted"}, strings.Split(row.SubmissionStatus, ","))
	assert.Equal(t, 1, r.TotalTeamMembers)
}

func TestSprintReportEmptyAndMissingSprint(t *testing.T) {
	st, sprint, _, _ := seedReportSprint(t)
	svc := tracker.NewReportService(st.Sprints(), st.Submissions(), st.Users(), nil)

	r, err := svc.SprintReport(context.Background(), sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, r.TotalTeamMembers)
	assert.Equal(t, 0.0, r.CompletionPercentage)
	assert.Empty(t, r.UserStories)
	assert.NotNil(t, r.UserStories)
	assert.Empty(t, r.Impediments)

	missing := primitive.NewObjectID()
	r, err = svc.SprintReport(context.Background(), missing)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", r.SprintName)
	assert.True(t, r.StartDate.IsZero())
	assert.Equal(t, missing, r.SprintID)
}

func TestSprintReportCache(t *testing.T) {
	st, sprint, a, _ := seedReportSprint(t)
	cache := trackertest.NewCache()
	reports := tracker.NewReportService(st.Sprints(), st.Submissions(), st.Users(), nil).WithCache(cache)
	subs := tracker.NewSubmissionService(st.Submissions(), st.Sprints(), nil).WithCache(cache)
	ctx := context.Background()

	_, err := reports.SprintReport(ctx, sprint.ID)
	require.NoError(t, err)
	_, err = reports.SprintReport(ctx, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Misses)
	assert.Equal(t, 1, cache.Hits)

	_, err = subs.CreateOrUpdate(ctx, &models.SubmissionInput{SprintID: sprint.ID, StoryPointsPlanned: 4, StoryPointsCompleted: 1}, a.ID)
	require.NoError(t, err)

	r, err := reports.SprintReport(ctx, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Misses)
	assert.Equal(t, 4, r.TotalStoryPointsPlanned)

	cache.Err = errors.New("cache offline")
	r, err = reports.SprintReport(ctx, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, r.TotalStoryPointsPlanned)
}

func TestSprintReportStoreFailure(t *testing.T) {
	st, sprint, _, _ := seedReportSprint(t)
	svc := tracker.NewReportService(st.Sprints(), st.Submissions(), st.Users(), nil)
	st.FailWith(errors.New("timeout"))

	_, err := svc.SprintReport(context.Background(), sprint.ID)
	var ue *tracker.UnavailableError
	assert.ErrorAs(t, err, &ue)
}

func TestExportPDF(t *testing.T) {
	st, sprint, _, _ := seedReportSprint(t)
	renderer := &stubRenderer{}
	archive := &trackertest.Archive{}
	svc := tracker.NewReportService(st.Sprints(), st.Submissions(), st.Users(), nil).WithExport(renderer, archive)
	svc.SetClock(func() time.Time { return t0 })

	pdf, location, err := svc.ExportPDF(context.Background(), sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 Sprint 7", string(pdf))
	key := tracker.ArchiveKey(sprint.ID, t0)
	assert.Equal(t, "mem://"+key, location)
	assert.Contains(t, archive.Objects, key)
	assert.Equal(t, 1, renderer.calls)

	archive.Err = errors.New("bucket missing")
	_, _, err = svc.ExportPDF(context.Background(), sprint.ID)
	var ue *tracker.UnavailableError
	assert.ErrorAs(t, err, &ue)

	noExport := tracker.NewReportService(st.Sprints(), st.Submissions(), st.Users(), nil)
	_, _, err = noExport.ExportPDF(context.Background(), sprint.ID)
	assert.Error(t, err)
}
