package rest

import (
	"net/http"
	"strconv"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/models"
)

const taskNotFound = "Task not found"

type updateStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	task, err := h.svc.Tasks.Create(r.Context(), &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, "Project or sprint not found")
		return
	}
	created(w, task, "Task created successfully")
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "task ID")
	if !valid {
		return
	}
	task, err := h.svc.Tasks.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, task, "")
}

func (h *Handler) backlog(w http.ResponseWriter, r *http.Request) {
	projectID, valid := pathID(w, r, "projectId", "project ID")
	if !valid {
		return
	}
	tasks, err := h.svc.Tasks.Backlog(r.Context(), projectID)
	if err != nil {
		writeError(w, r, h.logger, err, projectNotFound)
		return
	}
	ok(w, tasks, "")
}

func (h *Handler) sprintTasks(w http.ResponseWriter, r *http.Request) {
	sprintID, valid := pathID(w, r, "sprintId", "sprint ID")
	if !valid {
		return
	}
	tasks, err := h.svc.Tasks.ListBySprint(r.Context(), sprintID)
	if err != nil {
		writeError(w, r, h.logger, err, sprintNotFound)
		return
	}
	ok(w, tasks, "")
}

func (h *Handler) myTasks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tasks, err := h.svc.Tasks.MyTasks(r.Context(), middleware.UserIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, tasks, "")
}

func (h *Handler) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "task ID")
	if !valid {
		return
	}
	var req updateStatusRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	task, err := h.svc.Tasks.UpdateStatus(r.Context(), id, req.Status, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, task, "Task status updated")
}

func (h *Handler) moveTask(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "task ID")
	if !valid {
		return
	}
	var req models.MoveTaskRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	task, err := h.svc.Tasks.Move(r.Context(), id, &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, task, "Task moved")
}

// queryTasks answers GET /api/tasks with one page of tasks. Filters are
// optional query parameters.
func (h *Handler) queryTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f models.TaskFilter
	var valid bool
	if f.ProjectID, valid = queryID(w, r, "projectId", "project ID"); !valid {
		return
	}
	if f.SprintID, valid = queryID(w, r, "sprintId", "sprint ID"); !valid {
		return
	}
	if f.AssigneeID, valid = queryID(w, r, "assigneeId", "assignee ID"); !valid {
		return
	}
	if v := q.Get("status"); v != "" {
		status := models.TaskStatus(v)
		f.Status = &status
	}
	if v := q.Get("type"); v != "" {
		typ := models.TaskType(v)
		f.Type = &typ
	}
	if v := q.Get("priority"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(w, http.StatusBadRequest, "Invalid priority")
			return
		}
		priority := models.TaskPriority(n)
		f.Priority = &priority
	}
	f.Search = q.Get("search")
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	page, err := h.svc.Tasks.Query(r.Context(), f)
	if err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, page, "")
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "task ID")
	if !valid {
		return
	}
	var req models.UpdateTaskRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	task, err := h.svc.Tasks.Update(r.Context(), id, &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, task, "Task updated successfully")
}

func (h *Handler) logTime(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "task ID")
	if !valid {
		return
	}
	var req models.LogTimeRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	task, err := h.svc.Tasks.LogTime(r.Context(), id, &req, middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, task, "Time logged successfully")
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r, "id", "task ID")
	if !valid {
		return
	}
	if err := h.svc.Tasks.Delete(r.Context(), id, middleware.UserIDFrom(r.Context())); err != nil {
		writeError(w, r, h.logger, err, taskNotFound)
		return
	}
	ok(w, true, "Task deleted")
}
