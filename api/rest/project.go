package rest

import (
	"net/http"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/models"
)

const projectNotFound = "Project not found"

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.Projects.ListForUser(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, projects, "")
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	project, err := h.svc.Projects.Create(r.Context(), &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	created(w, project, "Project created successfully")
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "project ID")
	if !valid {
		return
	}
	project, err := h.svc.Projects.Get(r.Context(), id, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, project, "")
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "project ID")
	if !valid {
		return
	}
	var req models.UpdateProjectRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	project, err := h.svc.Projects.Update(r.Context(), id, &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, project, "Project updated successfully")
}

func (h *Handler) setMembers(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "project ID")
	if !valid {
		return
	}
	var req models.SetMembersRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MemberIDs == nil {
		fail(w, http.StatusBadRequest, "Member IDs are required")
		return
	}
	project, err := h.svc.Projects.SetMembers(r.Context(), id, req.MemberIDs, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, project, "Team members updated successfully")
}

func (h *Handler) archiveProject(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "project ID")
	if !valid {
		return
	}
	if err := h.svc.Projects.Archive(r.Context(), id, middleware.UserIDFrom(r.Context())); err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, true, "Project archived")
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	h.changeMember(w, r, true)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	h.changeMember(w, r, false)
}

func (h *Handler) changeMember(w http.ResponseWriter, r *http.Request, add bool) {
	id, valid := pathID(w, r, "id", "project ID")
	if !valid {
		return
	}
	memberID, valid := pathID(w, r, "memberId", "member ID")
	if !valid {
		return
	}
	userID := middleware.UserIDFrom(r.Context())

	var (
		project *models.Project
		err     error
		message string
	)
	if add {
		project, err = h.svc.Projects.AddMember(r.Context(), id, memberID, userID)
		message = "Team member added"
	} else {
		project, err = h.svc.Projects.RemoveMember(r.Context(), id, memberID, userID)
		message = "Team member removed"
	}
	if err != nil {
		writeError(w, r, h.logger, err, "Project or user not found")
		return
	}
	ok(w, project, message)
}
