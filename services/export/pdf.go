// Package export renders sprint reports for download.
package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/mytrueresume-stack/SprintTracker/models"
)

const dateLayout = "2006-01-02"

// PDFRenderer lays a SprintReportData out as a single A4 document.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (PDFRenderer) Render(report *models.SprintReportData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Sprint report: "+report.SprintName), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	title := report.SprintName
	if report.SprintNumber > 0 {
		title = fmt.Sprintf("Sprint %d: %s", report.SprintNumber, report.SprintName)
	}
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	if !report.StartDate.IsZero() {
		pdf.Cell(0, 8, fmt.Sprintf("%s - %s", report.StartDate.Format(dateLayout), report.EndDate.Format(dateLayout)))
		pdf.Ln(10)
	}

	heading(pdf, "Summary")
	summary := [][2]string{
		{"Team members", fmt.Sprint(report.TotalTeamMembers)},
		{"Story points", fmt.Sprintf("%d / %d", report.TotalStoryPointsCompleted, report.TotalStoryPointsPlanned)},
		{"Completion", fmt.Sprintf("%.1f%%", report.CompletionPercentage)},
		{"Hours worked", fmt.Sprintf("%.1f", report.TotalHoursWorked)},
		{"User stories", fmt.Sprint(report.TotalUserStories)},
		{"Features", fmt.Sprint(report.TotalFeatures)},
		{"Impediments", fmt.Sprintf("%d (%d open)", report.TotalImpediments, report.OpenImpediments)},
		{"Appreciations", fmt.Sprint(report.TotalAppreciations)},
	}
	for _, row := range summary {
		pdf.CellFormat(50, 7, row[0], "", 0, "", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	if len(report.UserBreakdown) > 0 {
		heading(pdf, "Team")
		widths := []float64{60, 25, 25, 25, 55}
		header := []string{"Member", "Planned", "Done", "Hours", "Status"}
		pdf.SetFont("Arial", "B", 10)
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, u := range report.UserBreakdown {
			pdf.CellFormat(widths[0], 7, tr(u.UserName), "1", 0, "", false, 0, "")
			pdf.CellFormat(widths[1], 7, fmt.Sprint(u.StoryPointsPlanned), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[2], 7, fmt.Sprint(u.StoryPointsCompleted), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.1f", u.HoursWorked), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 7, u.SubmissionStatus, "1", 0, "", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	if len(report.UserStories) > 0 {
		heading(pdf, "User stories")
		for _, us := range report.UserStories {
			line(pdf, tr(fmt.Sprintf("%s %s (%d pts, %s) - %s", us.StoryID, us.Title, us.StoryPoints, us.Status, us.ReportedBy)))
		}
	}
	if len(report.Features) > 0 {
		heading(pdf, "Features delivered")
		for _, f := range report.Features {
			line(pdf, tr(fmt.Sprintf("%s [%s] - %s", f.FeatureName, f.Status, f.DeliveredBy)))
		}
	}
	if len(report.Impediments) > 0 {
		heading(pdf, "Impediments")
		for _, im := range report.Impediments {
			line(pdf, tr(fmt.Sprintf("[%s] %s (%s, %s impact) - %s", im.Status, im.Description, im.Category, im.Impact, im.ReportedBy)))
		}
	}
	if len(report.Appreciations) > 0 {
		heading(pdf, "Appreciations")
		for _, a := range report.Appreciations {
			line(pdf, tr(fmt.Sprintf("%s: %s - from %s", a.AppreciatedUserName, a.Reason, a.GivenBy)))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 9, text)
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
}

func line(pdf *fpdf.Fpdf, text string) {
	pdf.MultiCell(0, 6, "- "+text, "", "", false)
}
