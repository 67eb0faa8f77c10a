package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/models"
)

// StartOfDay returns local midnight of t in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

// SumDaily adds up activity values per trackable type. Workout events are not counted.
func SumDaily(activities []models.Activity) models.DailyStats {
	var stats models.DailyStats
	for _, a := range activities {
		switch a.Type {
		case models.ActivityCalories:
			stats.Calories += a.Value
		case models.ActivitySteps:
			stats.Steps += a.Value
		case models.ActivityWater:
			stats.Water += a.Value
		case models.ActivitySleep:
			stats.Sleep += a.Value
		}
	}
	return stats
}

// SumWeekly buckets calorie events by the weekday of their own date in loc.
// Every other type is ignored.
func SumWeekly(activities []models.Activity, loc *time.Location) models.WeeklyCalories {
	var week models.WeeklyCalories
	for _, a := range activities {
		if a.Type != models.ActivityCalories {
			continue
		}
		week[a.Date.In(loc).Weekday()] += a.Value
	}
	return week
}

// SumMacros totals the seven macro fields
func SumMacros(entries []models.NutritionEntry) models.Macros {
	var totals models.Macros
	for _, e := range entries {
		totals = totals.Add(e.Macros)
	}
	return totals
}

// DailyStats sums the user's activities since local midnight
func (s *Service) DailyStats(ctx context.Context, userID string) (models.DailyStats, error) {
	now := s.now()
	activities, err := s.store.ActivitiesBetween(ctx, userID, StartOfDay(now, s.loc), now)
	if err != nil {
		return models.DailyStats{}, fmt.Errorf("failed to load daily activities: %w", err)
	}
	return SumDaily(activities), nil
}

// WeeklyStats sums the user's calorie events of the trailing 7 days by weekday
func (s *Service) WeeklyStats(ctx context.Context, userID string) (models.WeeklyCalories, error) {
	now := s.now()
	weekAgo := now.In(s.loc).AddDate(0, 0, -7)
	activities, err := s.store.ActivitiesBetween(ctx, userID, weekAgo, now)
	if err != nil {
		return models.WeeklyCalories{}, fmt.Errorf("failed to load weekly activities: %w", err)
	}
	return SumWeekly(activities, s.loc), nil
}

// DailyNutrition returns the user's entries since local midnight with their totals
func (s *Service) DailyNutrition(ctx context.Context, userID string) (*models.DailyNutrition, error) {
	now := s.now()
	meals, err := s.store.NutritionEntriesBetween(ctx, userID, StartOfDay(now, s.loc), now)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily meals: %w", err)
	}
	return &models.DailyNutrition{Meals: meals, Totals: SumMacros(meals)}, nil
}

// ParseDate accepts RFC3339 or a YYYY-MM-DD date, which means midnight of that date in the service location
func (s *Service) ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, raw)
	}
	return t, nil
}

// Users returns every registered user
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// Location returns the time zone daily windows are computed in
func (s *Service) Location() *time.Location {
	return s.loc
}
