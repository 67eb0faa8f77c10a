package handler

import (
	"net/http"

	"github.com/fitgrow/fitgrow-backend/internal/middleware"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/service"
	"github.com/sirupsen/logrus"
)

// Maximum accepted size of an Apple Health export upload
const maxImportBytes = 64 << 20

// Handler serves the REST API
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

// NewHandler creates a handler over svc
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Healthz reports liveness
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, envelope{"status": "ok"})
}

// currentUser returns the user set by the auth middleware. Routes that call it
// are always mounted behind that middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}
	return user, true
}
