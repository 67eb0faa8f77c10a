package handler

import (
	"net/http"

	"github.com/fitgrow/fitgrow-backend/internal/service"
)

// LogMeal stores one nutrition entry
func (h *Handler) LogMeal(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.MealInput
	if !decode(w, r, &in) {
		return
	}
	meal, err := h.svc.LogMeal(r.Context(), user.ID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, envelope{"meal": meal})
}

// DailyNutrition returns today's meals and their macro totals
func (h *Handler) DailyNutrition(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	daily, err := h.svc.DailyNutrition(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, envelope{"meals": daily.Meals, "totals": daily.Totals})
}

// ListMeals returns the user's meal history, filtered by startDate and endDate
func (h *Handler) ListMeals(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	start, end, err := h.dateRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	meals, err := h.svc.ListMeals(r.Context(), user.ID, start, end)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, envelope{"meals": meals})
}
