package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	report := &models.SprintReportData{
		SprintName:                "Checkout revamp",
		SprintNumber:              7,
		StartDate:                 time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:                   time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		TotalTeamMembers:          2,
		TotalStoryPointsPlanned:   15,
		TotalStoryPointsCompleted: 11,
		CompletionPercentage:      73.3,
		UserBreakdown: []models.UserSprintSummary{
			{UserName: "Zoë Müller", StoryPointsPlanned: 10, StoryPointsCompleted: 6, SubmissionStatus: "Submitted"},
		},
		UserStories:   []models.UserStoryReport{{StoryID: "US-1", Title: "Pay by card", StoryPoints: 5, Status: "Completed", ReportedBy: "Zoë Müller"}},
		Features:      []models.FeatureReport{{FeatureName: "Wallet", Status: "Delivered", DeliveredBy: "Ann"}},
		Impediments:   []models.ImpedimentReport{{Description: "Sandbox down", Status: "Open", Category: "Technical", Impact: "High"}},
		Appreciations: []models.AppreciationReport{{AppreciatedUserName: "Team", Reason: "Great push", GivenBy: "Ann"}},
	}

	out, err := PDFRenderer{}.Render(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestRenderEmptyReport(t *testing.T) {
	out, err := NewPDFRenderer().Render(&models.SprintReportData{SprintName: "Unknown"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
