package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/models"
)

const sprintNotFound = "Sprint not found"

func (h *Handler) createSprint(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSprintRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sprint, err := h.svc.Sprints.Create(r.Context(), &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	created(w, sprint, "Sprint created successfully")
}

func (h *Handler) getSprint(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	sprint, err := h.svc.Sprints.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, sprint, "")
}

func (h *Handler) listSprints(w http.ResponseWriter, r *http.Request) {
	projectID, valid := pathID(w, r, "projectId", "project ID")
	if !valid {
		return
	}
	sprints, err := h.svc.Sprints.ListByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, sprints, "")
}

func (h *Handler) startSprint(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	sprint, err := h.svc.Sprints.Start(r.Context(), id, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, sprint, "Sprint started")
}

// completeSprint accepts an optional retrospective body.
func (h *Handler) completeSprint(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	var retro *models.SprintRetrospective
	var body models.SprintRetrospective
	switch err := decode(r, &body); {
	case err == nil:
		retro = &body
	case errors.Is(err, io.EOF):
	default:
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sprint, err := h.svc.Sprints.Complete(r.Context(), id, retro, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, sprint, "Sprint completed")
}

func (h *Handler) cancelSprint(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	sprint, err := h.svc.Sprints.Cancel(r.Context(), id, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, sprint, "Sprint cancelled")
}

func (h *Handler) deleteSprint(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	if err := h.svc.Sprints.Delete(r.Context(), id, middleware.UserIDFrom(r.Context())); err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, true, "Sprint deleted")
}

func (h *Handler) updateSprint(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	var req models.UpdateSprintRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sprint, err := h.svc.Sprints.Update(r.Context(), id, &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, sprint, "Sprint updated successfully")
}

func (h *Handler) activeSprint(w http.ResponseWriter, r *http.Request) {
	projectID, valid := pathID(w, r, "projectId", "project ID")
	if !valid {
		return
	}
	sprint, err := h.svc.Sprints.Active(r.Context(), projectID)
	if err != nil {
		writeError(w, r, h.logger, err, "No active sprint found for this project")
		return
	}
	ok(w, sprint, "")
}

func (h *Handler) sprintView(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("view") {
	case "burndown":
		h.burndown(w, r)
	default:
		fail(w, http.StatusNotFound, "Unknown sprint view")
	}
}

func (h *Handler) burndown(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	data, err := h.svc.Sprints.Burndown(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, data, "")
}

func (h *Handler) velocity(w http.ResponseWriter, r *http.Request) {
	projectID, valid := pathID(w, r, "projectId", "project ID")
	if !valid {
		return
	}
	data, err := h.svc.Sprints.Velocity(r.Context(), projectID)
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, data, "")
}

func (h *Handler) recordMetrics(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "sprint ID")
	if !valid {
		return
	}
	if err := h.svc.Sprints.RecordMetrics(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, true, "Metrics recorded")
}
