package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/metrics"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/validation"
)

// ActivityInput is the payload of POST /health/activity
type ActivityInput struct {
	Type        models.ActivityType `json:"type" validate:"required,oneof=calories steps water sleep workout"`
	Value       *float64            `json:"value" validate:"required"`
	WorkoutType string              `json:"workoutType"`
	Duration    *float64            `json:"duration"`
	Notes       string              `json:"notes"`
	Date        *time.Time          `json:"date"`
}

// LogActivity stores one activity for the user. Date defaults to now.
func (s *Service) LogActivity(ctx context.Context, userID string, in ActivityInput) (*models.Activity, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	a := &models.Activity{
		UserID:      userID,
		Type:        in.Type,
		Value:       *in.Value,
		WorkoutType: in.WorkoutType,
		Duration:    in.Duration,
		Notes:       in.Notes,
		Date:        s.now(),
	}
	if in.Date != nil && !in.Date.IsZero() {
		a.Date = *in.Date
	}

	if err := s.store.CreateActivity(ctx, a); err != nil {
		return nil, err
	}
	metrics.EventsIngested.WithLabelValues(string(a.Type), "api").Inc()
	s.log.Debugf("Activity %s logged for user %s: %v", a.Type, userID, a.Value)
	return a, nil
}

// ListActivities returns up to 100 of the user's activities, newest first.
// The date range applies only when both bounds are given.
func (s *Service) ListActivities(ctx context.Context, userID string, start, end *time.Time, typ models.ActivityType) ([]models.Activity, error) {
	if typ != "" && !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrValidation, typ)
	}
	return s.store.ListActivities(ctx, userID, models.ActivityFilter{
		Start: start,
		End:   end,
		Type:  typ,
		Limit: listLimit,
	})
}

// ImportAppleHealth stores every activity found in an Apple Health export
func (s *Service) ImportAppleHealth(ctx context.Context, userID string, r io.Reader) (models.ImportResult, error) {
	parsed, err := s.health.Parse(r)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	result := models.ImportResult{Imported: len(parsed.Activities), Skipped: parsed.Skipped}
	if len(parsed.Activities) == 0 {
		return result, nil
	}
	for i := range parsed.Activities {
		parsed.Activities[i].UserID = userID
	}
	if err := s.store.CreateActivities(ctx, parsed.Activities); err != nil {
		return models.ImportResult{}, err
	}
	for _, a := range parsed.Activities {
		metrics.EventsIngested.WithLabelValues(string(a.Type), "apple_health").Inc()
	}
	s.log.Infof("Imported %d health records for user %s (%d skipped)", result.Imported, userID, result.Skipped)
	return result, nil
}
