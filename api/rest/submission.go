package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/middleware/loaders"
	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	submissionNotFound   = "Submission not found"
	ReportLocationHeader = "X-Report-Location"
)

// SubmissionView is a submission annotated with its owner's display name.
type SubmissionView struct {
	*models.SprintSubmission
	UserName string `json:"userName"`
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	sprintID, valid := pathID(w, r, "sprintId", "Sprint ID")
	if !valid {
		return
	}
	userID := middleware.UserIDFrom(r.Context())
	result, err := h.svc.Submissions.GetOrTemplate(r.Context(), sprintID, userID)
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}

	switch res := result.(type) {
	case tracker.FoundSubmission:
		ok(w, res.Submission, "")
	case tracker.SubmissionTemplate:
		draft := &models.SprintSubmission{
			SprintID:  res.SprintID,
			ProjectID: res.ProjectID,
			UserID:    res.UserID,
			Status:    models.SubmissionStatusDraft,
		}
		draft.Normalize()
		ok(w, draft, "")
	}
}

func (h *Handler) saveSubmission(w http.ResponseWriter, r *http.Request) {
	sprintID, valid := pathID(w, r, "sprintId", "Sprint ID")
	if !valid {
		return
	}
	var input models.SubmissionInput
	if err := decode(r, &input); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input.SprintID = sprintID

	sub, err := h.svc.Submissions.CreateOrUpdate(r.Context(), &input, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, sub, "Submission saved successfully")
}

func (h *Handler) transitionSubmission(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "submissionId", "Submission ID")
	if !valid {
		return
	}
	userID := middleware.UserIDFrom(r.Context())

	var (
		sub     *models.SprintSubmission
		err     error
		message string
	)
	switch r.PathValue("action") {
	case "submit":
		sub, err = h.svc.Submissions.Submit(r.Context(), id, userID)
		message = "Submission submitted successfully"
	case "reopen":
		sub, err = h.svc.Submissions.Reopen(r.Context(), id, userID)
		message = "Submission reopened for editing"
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err, submissionNotFound)
		return
	}
	ok(w, sub, message)
}

func (h *Handler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "submissionId", "Submission ID")
	if !valid {
		return
	}
	deleted, err := h.svc.Submissions.Delete(r.Context(), id, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, submissionNotFound)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusBadRequest, Response{
			Data:    false,
			Message: optional("Cannot delete. Submission not found or already submitted."),
		})
		return
	}
	ok(w, true, "Submission deleted")
}

// sprintSubmissions is the manager view of every submission in a sprint.
func (h *Handler) sprintSubmissions(w http.ResponseWriter, r *http.Request) {
	sprintID, valid := pathID(w, r, "sprintId", "Sprint ID")
	if !valid {
		return
	}
	subs, err := h.svc.Submissions.ListBySprint(r.Context(), sprintID)
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.UserID)
	}
	names := map[primitive.ObjectID]string{}
	if l := loaders.For(r.Context()); l != nil {
		names = l.UserNames(r.Context(), ids)
	}

	views := make([]SubmissionView, 0, len(subs))
	for _, sub := range subs {
		name, found := names[sub.UserID]
		if !found {
			name = "Unknown"
		}
		views = append(views, SubmissionView{SprintSubmission: sub, UserName: name})
	}
	ok(w, views, "")
}

func (h *Handler) sprintReport(w http.ResponseWriter, r *http.Request) {
	sprintID, valid := pathID(w, r, "sprintId", "Sprint ID")
	if !valid {
		return
	}
	report, err := h.svc.Reports.SprintReport(r.Context(), sprintID)
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, report, "")
}

func (h *Handler) sprintReportPDF(w http.ResponseWriter, r *http.Request) {
	sprintID, valid := pathID(w, r, "sprintId", "Sprint ID")
	if !valid {
		return
	}
	pdf, location, err := h.svc.Reports.ExportPDF(r.Context(), sprintID)
	if errors.Is(err, tracker.ErrExportDisabled) {
		fail(w, http.StatusNotImplemented, "Report export is not configured")
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sprint-%s.pdf"`, sprintID.Hex()))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	if location != "" {
		w.Header().Set(ReportLocationHeader, location)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) mySubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.Submissions.ListByUser(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, submissionNotFound)
		return
	}
	ok(w, subs, "")
}
