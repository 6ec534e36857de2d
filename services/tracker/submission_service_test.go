package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker/trackertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type submissionFixture struct {
	store  *trackertest.Store
	cache  *trackertest.Cache
	events *trackertest.Events
	svc    *tracker.SubmissionService
	dev    *models.User
	sprint *models.Sprint
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	st := trackertest.New()
	owner := st.SeedUser(models.UserRoleManager, "Mia", "Manager")
	dev := st.SeedUser(models.UserRoleDeveloper, "Dan", "Dev")
	project := st.SeedProject("SPR", owner, dev)
	sprint := st.SeedSprint(project, "Sprint 1", models.SprintStatusActive, t0)

	cache := trackertest.NewCache()
	events := &trackertest.Events{}
	svc := tracker.NewSubmissionService(st.Submissions(), st.Sprints(), nil).WithCache(cache).WithEvents(events)
	svc.SetClock(func() time.Time { return t0 })
	return &submissionFixture{store: st, cache: cache, events: events, svc: svc, dev: dev, sprint: sprint}
}

func str(s string) *string { return &s }

func (f *submissionFixture) input(planned, completed int) *models.SubmissionInput {
	return &models.SubmissionInput{
		SprintID:             f.sprint.ID,
		StoryPointsPlanned:   planned,
		StoryPointsCompleted: completed,
		HoursWorked:          32.5,
		UserStories: []models.UserStoryInput{
			{StoryID: str("US-1"), Title: str("Login page"), StoryPoints: 5},
		},
		Impediments: []models.ImpedimentInput{{Description: str("Flaky CI")}},
		Achievements: str("Shipped login"),
	}
}

func TestCreateThenSubmitThenRejectUpdate(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateOrUpdate(ctx, f.input(20, 0), f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusDraft, created.Status)
	assert.Equal(t, f.sprint.ProjectID, created.ProjectID)
	assert.Equal(t, f.dev.ID, created.UserID)
	assert.Equal(t, t0, created.CreatedAt)

	submitted, err := f.svc.Submit(ctx, created.ID, f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	before, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateOrUpdate(ctx, f.input(30, 10), f.dev.ID)
	assert.True(t, tracker.IsCode(err, tracker.CodeSubmissionSubmitted))

	after, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 20, after.StoryPointsPlanned)
}

func TestCreateOrUpdateKeepsOneSubmissionPerPair(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateOrUpdate(ctx, f.input(10, 2), f.dev.ID)
	require.NoError(t, err)

	f.svc.SetClock(func() time.Time { return t0.Add(time.Hour) })
	second, err := f.svc.CreateOrUpdate(ctx, f.input(12, 4), f.dev.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), second.UpdatedAt)
	assert.Equal(t, 1, f.store.SubmissionCount(f.sprint.ID, f.dev.ID))

	stored, err := f.svc.GetForSprint(ctx, f.sprint.ID, f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.StoryPointsPlanned)
	assert.Equal(t, 4, stored.StoryPointsCompleted)
}

func TestConcurrentCreatesLeaveOneSubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateOrUpdate(ctx, f.input(10, i), f.dev.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, tracker.ErrDuplicateKey)
		}
	}
	assert.Equal(t, 1, f.store.SubmissionCount(f.sprint.ID, f.dev.ID))
}

func TestCreateOrUpdateRejectsCompletedOverPlanned(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	saved, err := f.svc.CreateOrUpdate(ctx, f.input(8, 3), f.dev.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateOrUpdate(ctx, f.input(8, 9), f.dev.ID)
	var br *tracker.BusinessRuleError
	require.ErrorAs(t, err, &br)
	assert.Equal(t, tracker.CodeInvalidPoints, br.Code)

	stored, err := f.svc.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.StoryPointsCompleted)
	assert.Equal(t, 8, stored.StoryPointsPlanned)
}

func TestCreateOrUpdateDerivesPlannedFromStories(t *testing.T) {
	f := newSubmissionFixture(t)
	in := &models.SubmissionInput{
		SprintID: f.sprint.ID,
		UserStories: []models.UserStoryInput{
			{StoryID: str("US-1"), Title: str("a"), StoryPoints: 3},
			{StoryID: str("US-2"), Title: str("b"), StoryPoints: 4},
		},
	}
	saved, err := f.svc.CreateOrUpdate(context.Background(), in, f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, saved.StoryPointsPlanned)
}

func TestCreateOrUpdatePreconditions(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrUpdate(ctx, &models.SubmissionInput{}, f.dev.ID)
	assert.True(t, tracker.IsCode(err, tracker.CodeSprintRequired))

	in := f.input(5, 1)
	in.SprintID = primitive.NewObjectID()
	_, err = f.svc.CreateOrUpdate(ctx, in, f.dev.ID)
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	_, err = f.svc.CreateOrUpdate(ctx, f.input(5, 1), primitive.NilObjectID)
	assert.ErrorIs(t, err, tracker.ErrUnauthenticated)

	in = f.input(5, 1)
	in.HoursWorked = 5000
	_, err = f.svc.CreateOrUpdate(ctx, in, f.dev.ID)
	var ve *tracker.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 1)
}

func TestReopenRoundTrip(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	saved, err := f.svc.CreateOrUpdate(ctx, f.input(13, 8), f.dev.ID)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)

	reopened, err := f.svc.Reopen(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusDraft, reopened.Status)
	assert.Nil(t, reopened.SubmittedAt)

	stored, err := f.svc.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusDraft, stored.Status)
	assert.Nil(t, stored.SubmittedAt)
	assert.Equal(t, saved.StoryPointsPlanned, stored.StoryPointsPlanned)
	assert.Equal(t, saved.StoryPointsCompleted, stored.StoryPointsCompleted)
	assert.Equal(t, saved.HoursWorked, stored.HoursWorked)
	assert.Equal(t, saved.UserStories, stored.UserStories)
	assert.Equal(t, saved.Impediments, stored.Impediments)
	assert.Equal(t, saved.Achievements, stored.Achievements)
}

func TestSubmitAndReopenGuards(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	saved, err := f.svc.CreateOrUpdate(ctx, f.input(5, 5), f.dev.ID)
	require.NoError(t, err)

	_, err = f.svc.Reopen(ctx, saved.ID, f.dev.ID)
	assert.True(t, tracker.IsCode(err, tracker.CodeCannotReopen))

	_, err = f.svc.Submit(ctx, saved.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	_, err = f.svc.Submit(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, saved.ID, f.dev.ID)
	assert.True(t, tracker.IsCode(err, tracker.CodeAlreadySubmitted))
}

func TestSubmitReturnsRefreshedTimestamps(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	saved, err := f.svc.CreateOrUpdate(ctx, f.input(8, 5), f.dev.ID)
	require.NoError(t, err)
	require.Equal(t, t0, saved.UpdatedAt)

	later := t0.Add(3 * time.Hour)
	f.svc.SetClock(func() time.Time { return later })
	submitted, err := f.svc.Submit(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, later, submitted.UpdatedAt)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, later, *submitted.SubmittedAt)
	assert.Equal(t, t0, submitted.CreatedAt)

	stored, err := f.svc.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.UpdatedAt, submitted.UpdatedAt)
}

func TestSubmitRejectsBrokenBudget(t *testing.T) {
	f := newSubmissionFixture(t)
	sub := models.SprintSubmission{
		ID:                   primitive.NewObjectID(),
		SprintID:             f.sprint.ID,
		UserID:               f.dev.ID,
		StoryPointsPlanned:   2,
		StoryPointsCompleted: 6,
		Status:               models.SubmissionStatusDraft,
	}
	f.store.PutSubmission(sub)

	_, err := f.svc.Submit(context.Background(), sub.ID, f.dev.ID)
	assert.True(t, tracker.IsCode(err, tracker.CodeInvalidPoints))

	stored, err := f.svc.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusDraft, stored.Status)
}

func TestReviewedSubmissionCanBeReopenedOrOverwritten(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	reviewed := models.SprintSubmission{
		ID:                 primitive.NewObjectID(),
		SprintID:           f.sprint.ID,
		UserID:             f.dev.ID,
		StoryPointsPlanned: 5,
		Status:             models.SubmissionStatusReviewed,
		SubmittedAt:        &t0,
		CreatedAt:          t0,
	}
	f.store.PutSubmission(reviewed)

	updated, err := f.svc.CreateOrUpdate(ctx, f.input(6, 6), f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewed.ID, updated.ID)
	assert.Equal(t, models.SubmissionStatusDraft, updated.Status)

	f.store.PutSubmission(reviewed)
	reopened, err := f.svc.Reopen(ctx, reviewed.ID, f.dev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusDraft, reopened.Status)
}

func TestDeleteOnlyOwnDrafts(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	saved, err := f.svc.CreateOrUpdate(ctx, f.input(5, 1), f.dev.ID)
	require.NoError(t, err)

	ok, err := f.svc.Delete(ctx, saved.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.Submit(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	ok, err = f.svc.Delete(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, f.store.SubmissionCount(f.sprint.ID, f.dev.ID))

	_, err = f.svc.Reopen(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	ok, err = f.svc.Delete(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.store.SubmissionCount(f.sprint.ID, f.dev.ID))

	ok, err = f.svc.Delete(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrTemplate(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	res, err := f.svc.GetOrTemplate(ctx, f.sprint.ID, f.dev.ID)
	require.NoError(t, err)
	tmpl, ok := res.(tracker.SubmissionTemplate)
	require.True(t, ok)
	assert.Equal(t, f.sprint.ProjectID, tmpl.ProjectID)
	assert.Equal(t, 0, f.store.SubmissionCount(f.sprint.ID, f.dev.ID))

	saved, err := f.svc.CreateOrUpdate(ctx, f.input(5, 1), f.dev.ID)
	require.NoError(t, err)
	res, err = f.svc.GetOrTemplate(ctx, f.sprint.ID, f.dev.ID)
	require.NoError(t, err)
	found, ok := res.(tracker.FoundSubmission)
	require.True(t, ok)
	assert.Equal(t, saved.ID, found.Submission.ID)

	_, err = f.svc.GetOrTemplate(ctx, primitive.NewObjectID(), f.dev.ID)
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestListByUserNewestFirst(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	later := f.store.SeedSprint(&models.Project{ID: f.sprint.ProjectID, OwnerID: f.dev.ID}, "Sprint 2", models.SprintStatusActive, t0)

	_, err := f.svc.CreateOrUpdate(ctx, f.input(5, 1), f.dev.ID)
	require.NoError(t, err)
	f.svc.SetClock(func() time.Time { return t0.Add(24 * time.Hour) })
	in := f.input(5, 1)
	in.SprintID = later.ID
	_, err = f.svc.CreateOrUpdate(ctx, in, f.dev.ID)
	require.NoError(t, err)

	subs, err := f.svc.ListByUser(ctx, f.dev.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, later.ID, subs[0].SprintID)

	all, err := f.svc.ListBySprint(ctx, f.sprint.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMutationsInvalidateCacheAndPublish(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	f.events.Err = errors.New("redis down")

	saved, err := f.svc.CreateOrUpdate(ctx, f.input(5, 1), f.dev.ID)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	_, err = f.svc.Reopen(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)
	_, err = f.svc.Delete(ctx, saved.ID, f.dev.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"submission.created",
		"submission.submitted",
		"submission.reopened",
		"submission.deleted",
	}, f.events.Types())
	assert.Len(t, f.cache.Invalidated, 4)
	assert.Equal(t, f.sprint.ID, f.cache.Invalidated[0])
}

func TestStoreFailureIsUnavailable(t *testing.T) {
	f := newSubmissionFixture(t)
	f.store.FailWith(errors.New("connection reset"))

	_, err := f.svc.CreateOrUpdate(context.Background(), f.input(5, 1), f.dev.ID)
	var ue *tracker.UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.EqualError(t, errors.Unwrap(err), "connection reset")

	_, err = f.svc.ListByUser(context.Background(), f.dev.ID)
	assert.ErrorAs(t, err, &ue)
}
