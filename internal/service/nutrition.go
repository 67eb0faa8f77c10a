package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/metrics"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/validation"
)

// MealInput is the payload of POST /nutrition/meal
type MealInput struct {
	FoodName    string          `json:"foodName" validate:"required"`
	ServingSize string          `json:"servingSize"`
	Calories    *float64        `json:"calories" validate:"required"`
	Protein     float64         `json:"protein"`
	Carbs       float64         `json:"carbs"`
	Fat         float64         `json:"fat"`
	Fiber       float64         `json:"fiber"`
	Sugar       float64         `json:"sugar"`
	Sodium      float64         `json:"sodium"`
	MealType    models.MealType `json:"mealType" validate:"omitempty,oneof=breakfast lunch dinner snack"`
	Date        *time.Time      `json:"date"`
}

// LogMeal stores one nutrition entry for the user. Meal type defaults to snack, date to now.
func (s *Service) LogMeal(ctx context.Context, userID string, in MealInput) (*models.NutritionEntry, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	e := &models.NutritionEntry{
		UserID:      userID,
		FoodName:    in.FoodName,
		ServingSize: in.ServingSize,
		MealType:    in.MealType,
		Macros: models.Macros{
			Calories: *in.Calories,
			Protein:  in.Protein,
			Carbs:    in.Carbs,
			Fat:      in.Fat,
			Fiber:    in.Fiber,
			Sugar:    in.Sugar,
			Sodium:   in.Sodium,
		},
		Date: s.now(),
	}
	if e.MealType == "" {
		e.MealType = models.MealSnack
	}
	if in.Date != nil && !in.Date.IsZero() {
		e.Date = *in.Date
	}

	if err := s.store.CreateNutritionEntry(ctx, e); err != nil {
		return nil, err
	}
	metrics.MealsIngested.WithLabelValues(string(e.MealType)).Inc()
	s.log.Debugf("Meal %q logged for user %s", e.FoodName, userID)
	return e, nil
}

// ListMeals returns up to 100 of the user's entries, newest first.
// The date range applies only when both bounds are given.
func (s *Service) ListMeals(ctx context.Context, userID string, start, end *time.Time) ([]models.NutritionEntry, error) {
	return s.store.ListNutritionEntries(ctx, userID, models.NutritionFilter{
		Start: start,
		End:   end,
		Limit: listLimit,
	})
}
