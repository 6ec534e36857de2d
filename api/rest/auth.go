package rest

import (
	"net/http"

	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req tracker.RegisterRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	resp, err := h.svc.Auth.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err, "User not found")
		return
	}
	created(w, resp, "Registration successful")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req tracker.LoginRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	resp, err := h.svc.Auth.Login(r.Context(), &req)
	if tracker.IsCode(err, tracker.CodeInvalidCredentials) {
		h.logger.Warn("login failed", "email", req.Email)
		fail(w, http.StatusUnauthorized, "Invalid email or password", tracker.CodeInvalidCredentials)
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err, "User not found")
		return
	}
	ok(w, resp, "Login successful")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Auth.Me(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, "User not found")
		return
	}
	ok(w, user, "")
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Auth.Refresh(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, "User not found")
		return
	}
	ok(w, resp, "Token refreshed")
}
