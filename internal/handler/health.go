package handler

import (
	"net/http"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/service"
)

// LogActivity stores one activity event
func (h *Handler) LogActivity(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.ActivityInput
	if !decode(w, r, &in) {
		return
	}
	activity, err := h.svc.LogActivity(r.Context(), user.ID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, envelope{"activity": activity})
}

// ListActivities returns the user's activities, filtered by startDate, endDate and type
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	start, end, err := h.dateRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	typ := models.ActivityType(r.URL.Query().Get("type"))
	activities, err := h.svc.ListActivities(r.Context(), user.ID, start, end, typ)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, envelope{"activities": activities})
}

// DailyStats returns today's per-type sums
func (h *Handler) DailyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.DailyStats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, envelope{"stats": stats})
}

// WeeklyStats returns calorie sums of the last 7 days by weekday
func (h *Handler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	week, err := h.svc.WeeklyStats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, envelope{"weeklyData": week})
}

// ImportAppleHealth stores the records of an uploaded export.xml
func (h *Handler) ImportAppleHealth(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	result, err := h.svc.ImportAppleHealth(r.Context(), user.ID, body)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, envelope{"imported": result.Imported, "skipped": result.Skipped})
}

// dateRange parses the optional startDate and endDate query parameters
func (h *Handler) dateRange(r *http.Request) (*time.Time, *time.Time, error) {
	q := r.URL.Query()
	var start, end *time.Time
	if raw := q.Get("startDate"); raw != "" {
		t, err := h.svc.ParseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := h.svc.ParseDate(raw)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	return start, end, nil
}
