package rest

import (
	"net/http"
	"strconv"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
)

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard.Stats(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, "User not found")
		return
	}
	ok(w, stats, "")
}

func (h *Handler) activity(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	logs, err := h.svc.Dashboard.RecentActivity(r.Context(), middleware.UserIDFrom(r.Context()), count)
	if err != nil {
		writeError(w, r, h.logger, err, "User not found")
		return
	}
	ok(w, logs, "")
}
