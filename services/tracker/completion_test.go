package tracker_test

import (
	"testing"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/stretchr/testify/assert"
)

func sub(planned, completed int) *models.SprintSubmission {
	return &models.SprintSubmission{StoryPointsPlanned: planned, StoryPointsCompleted: completed}
}

func task(status models.TaskStatus, points *int) *models.Task {
	return &models.Task{Status: status, StoryPoints: points}
}

func pts(n int) *int { return &n }

func TestPercent(t *testing.T) {
	assert.Equal(t, 73.3, tracker.Percent(11, 15))
	assert.Equal(t, 0.0, tracker.Percent(5, 0))
	assert.Equal(t, 100.0, tracker.Percent(3, 3))
	// 1/16 = 6.25% rounds half to even.
	assert.Equal(t, 6.2, tracker.Percent(1, 16))
	assert.Equal(t, 18.8, tracker.Percent(3, 16))
}

func TestCompletionFallbackChain(t *testing.T) {
	tasks := []*models.Task{
		task(models.TaskStatusDone, pts(3)),
		task(models.TaskStatusInProgress, pts(5)),
		task(models.TaskStatusDone, nil),
	}

	cases := []struct {
		name      string
		submitted []*models.SprintSubmission
		drafts    []*models.SprintSubmission
		tasks     []*models.Task
		want      float64
		source    models.CompletionSource
	}{
		{"submitted wins", []*models.SprintSubmission{sub(10, 6), sub(5, 5)}, []*models.SprintSubmission{sub(1, 1)}, tasks, 73.3, models.CompletionSourceSubmitted},
		{"drafts when nothing submitted", nil, []*models.SprintSubmission{sub(4, 1)}, tasks, 25, models.CompletionSourceDraft},
		{"task points as denominator", []*models.SprintSubmission{sub(0, 2)}, nil, tasks, 25, models.CompletionSourceSubmitted},
		{"progress without any plan is complete", nil, []*models.SprintSubmission{sub(0, 2)}, nil, 100, models.CompletionSourceDraft},
		{"no progress at all", []*models.SprintSubmission{sub(0, 0)}, nil, nil, 0, models.CompletionSourceSubmitted},
		{"tasks only", nil, nil, tasks, 37.5, models.CompletionSourceTasks},
		{"nothing", nil, nil, nil, 0, models.CompletionSourceTasks},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, source := tracker.Completion(tc.submitted, tc.drafts, tc.tasks)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.source, source)
		})
	}
}
