package tracker

import (
	"math"

	"github.com/mytrueresume-stack/SprintTracker/models"
)

// Percent returns num/den*100 rounded half to even at one decimal, or 0
// when den is not positive.
func Percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return math.RoundToEven(float64(num)*1000/float64(den)) / 10
}

// Completion derives a sprint's completion percentage. Submitted
// submissions win over drafts, which win over task story points. When the
// chosen submissions plan nothing, task points become the denominator; if
// those are zero too, any completed points count as 100%.
func Completion(submitted, drafts []*models.SprintSubmission, tasks []*models.Task) (float64, models.CompletionSource) {
	subs, source := submitted, models.CompletionSourceSubmitted
	if len(subs) == 0 {
		subs, source = drafts, models.CompletionSourceDraft
	}
	taskTotal, taskDone := models.TaskPointTotals(tasks)

	if len(subs) == 0 {
		return Percent(taskDone, taskTotal), models.CompletionSourceTasks
	}

	planned, completed := 0, 0
	for _, s := range subs {
		if s == nil {
			continue
		}
		planned += s.StoryPointsPlanned
		completed += s.StoryPointsCompleted
	}
	switch {
	case planned > 0:
		return Percent(completed, planned), source
	case taskTotal > 0:
		return Percent(completed, taskTotal), source
	case completed > 0:
		return 100, source
	default:
		return 0, source
	}
}
