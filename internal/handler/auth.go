package handler

import (
	"net/http"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/service"
)

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if !decode(w, r, &in) {
		return
	}
	session, err := h.svc.Signup(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, sessionBody(session))
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if !decode(w, r, &in) {
		return
	}
	session, err := h.svc.Login(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, sessionBody(session))
}

// Profile returns the authenticated user
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	respondOK(w, http.StatusOK, envelope{"user": user.Profile()})
}

// UpdateGoals changes the authenticated user's goals
func (h *Handler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.GoalsInput
	if !decode(w, r, &in) {
		return
	}
	goals, err := h.svc.UpdateGoals(r.Context(), user, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, envelope{"goals": goals})
}

func sessionBody(s *service.Session) envelope {
	return envelope{
		"token":     s.Token,
		"expiresAt": s.ExpiresAt.UTC().Format(time.RFC3339),
		"user":      s.User.Profile(),
	}
}
