package rest

import (
	"log/slog"
	"net/http"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/middleware/loaders"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
)

// Services are the domain services the handlers delegate to.
type Services struct {
	Auth        *tracker.AuthService
	Projects    *tracker.ProjectService
	Sprints     *tracker.SprintService
	Tasks       *tracker.TaskService
	Dashboard   *tracker.DashboardService
	Submissions *tracker.SubmissionService
	Reports     *tracker.ReportService
	Users       *tracker.UserService
	// UserStore backs the per-request user loaders.
	UserStore tracker.UserStore
}

type Handler struct {
	svc    Services
	logger *slog.Logger
}

func NewHandler(svc Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger.With("component", "rest")}
}

// Routes builds the API mux. Everything except registration, login and
// the health check requires a bearer token.
func (h *Handler) Routes(verifier middleware.TokenVerifier) http.Handler {
	public := http.NewServeMux()
	public.HandleFunc("GET /health", h.health)
	public.HandleFunc("POST /api/auth/register", h.register)
	public.HandleFunc("POST /api/auth/login", h.login)

	private := http.NewServeMux()
	private.HandleFunc("GET /api/auth/me", h.me)
	private.HandleFunc("POST /api/auth/refresh", h.refresh)

	private.HandleFunc("GET /api/users", h.listUsers)
	private.HandleFunc("GET /api/users/{id}", h.getUser)
	private.HandleFunc("PUT /api/users/{id}", h.updateUser)
	private.HandleFunc("DELETE /api/users/{id}", h.deactivateUser)
	private.HandleFunc("POST /api/users/{id}/reactivate", h.reactivateUser)
	private.HandleFunc("GET /api/users/team/{projectId}", h.projectTeam)

	private.HandleFunc("GET /api/projects", h.listProjects)
	private.HandleFunc("POST /api/projects", h.createProject)
	private.HandleFunc("GET /api/projects/{id}", h.getProject)
	private.HandleFunc("PUT /api/projects/{id}", h.updateProject)
	private.HandleFunc("POST /api/projects/{id}/members", h.setMembers)
	private.HandleFunc("DELETE /api/projects/{id}", h.archiveProject)
	private.HandleFunc("POST /api/projects/{id}/members/{memberId}", h.addMember)
	private.HandleFunc("DELETE /api/projects/{id}/members/{memberId}", h.removeMember)

	private.HandleFunc("POST /api/sprints", h.createSprint)
	private.HandleFunc("GET /api/sprints/{id}", h.getSprint)
	private.HandleFunc("PUT /api/sprints/{id}", h.updateSprint)
	private.HandleFunc("DELETE /api/sprints/{id}", h.deleteSprint)
	private.HandleFunc("GET /api/sprints/project/{projectId}", h.listSprints)
	private.HandleFunc("GET /api/sprints/project/{projectId}/velocity", h.velocity)
	private.HandleFunc("GET /api/sprints/project/{projectId}/active", h.activeSprint)
	private.HandleFunc("POST /api/sprints/{id}/start", h.startSprint)
	private.HandleFunc("POST /api/sprints/{id}/complete", h.completeSprint)
	private.HandleFunc("POST /api/sprints/{id}/cancel", h.cancelSprint)
	// "project/{projectId}" and "{id}/burndown" overlap, so per-sprint
	// views share one pattern.
	private.HandleFunc("GET /api/sprints/{id}/{view}", h.sprintView)
	private.HandleFunc("POST /api/sprints/{id}/metrics", h.recordMetrics)

	private.HandleFunc("GET /api/tasks", h.queryTasks)
	private.HandleFunc("POST /api/tasks", h.createTask)
	private.HandleFunc("GET /api/tasks/my-tasks", h.myTasks)
	private.HandleFunc("GET /api/tasks/backlog/{projectId}", h.backlog)
	private.HandleFunc("GET /api/tasks/sprint/{sprintId}", h.sprintTasks)
	private.HandleFunc("GET /api/tasks/{id}", h.getTask)
	private.HandleFunc("PUT /api/tasks/{id}", h.updateTask)
	private.HandleFunc("POST /api/tasks/{id}/log-time", h.logTime)
	private.HandleFunc("PATCH /api/tasks/{id}/status", h.updateTaskStatus)
	private.HandleFunc("POST /api/tasks/{id}/move", h.moveTask)
	private.HandleFunc("DELETE /api/tasks/{id}", h.deleteTask)

	private.HandleFunc("GET /api/dashboard", h.dashboard)
	private.HandleFunc("GET /api/dashboard/activity", h.activity)

	private.HandleFunc("GET /api/sprintsubmissions/sprint/{sprintId}", h.getSubmission)
	private.HandleFunc("POST /api/sprintsubmissions/sprint/{sprintId}", h.saveSubmission)
	private.HandleFunc("GET /api/sprintsubmissions/sprint/{sprintId}/all", h.sprintSubmissions)
	private.HandleFunc("GET /api/sprintsubmissions/sprint/{sprintId}/report", h.sprintReport)
	private.HandleFunc("GET /api/sprintsubmissions/sprint/{sprintId}/report/pdf", h.sprintReportPDF)
	private.HandleFunc("GET /api/sprintsubmissions/my-submissions", h.mySubmissions)
	// "sprint/{sprintId}" and "{submissionId}/submit" overlap, so the
	// transitions share one pattern.
	private.HandleFunc("POST /api/sprintsubmissions/{submissionId}/{action}", h.transitionSubmission)
	private.HandleFunc("DELETE /api/sprintsubmissions/{submissionId}", h.deleteSubmission)

	public.Handle("/api/", middleware.Chain(private,
		middleware.RequireAuth(verifier),
		loaders.Middleware(h.svc.UserStore),
	))
	return public
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ok(w, map[string]string{"status": "healthy"}, "")
}
