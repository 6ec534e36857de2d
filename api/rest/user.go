package rest

import (
	"net/http"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/models"
)

const userNotFound = "User not found"

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.UserFilter{Search: q.Get("search")}
	if v := q.Get("role"); v != "" {
		role := models.UserRole(v)
		if !role.IsValid() {
			fail(w, http.StatusBadRequest, "Invalid role")
			return
		}
		f.Role = &role
	}
	users, err := h.svc.Users.List(r.Context(), f)
	if err != nil {
		writeError(w, r, h.logger, err, userNotFound)
		return
	}
	ok(w, users, "")
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "user ID")
	if !valid {
		return
	}
	user, err := h.svc.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, userNotFound)
		return
	}
	ok(w, user, "")
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "user ID")
	if !valid {
		return
	}
	var req models.UpdateUserRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.svc.Users.Update(r.Context(), id, &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, userNotFound)
		return
	}
	ok(w, user, "User updated successfully")
}

func (h *Handler) projectTeam(w http.ResponseWriter, r *http.Request) {
	projectID, valid := pathID(w, r, "projectId", "project ID")
	if !valid {
		return
	}
	team, err := h.svc.Users.Team(r.Context(), projectID)
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, team, "")
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false, "User deactivated successfully")
}

func (h *Handler) reactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true, "User reactivated successfully")
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	id, valid := pathID(w, r, "id", "user ID")
	if !valid {
		return
	}
	if err := h.svc.Users.SetActive(r.Context(), id, active, middleware.UserIDFrom(r.Context())); err != nil {
		writeError(w, r, h.logger, err, userNotFound)
		return
	}
	ok(w, true, message)
}
