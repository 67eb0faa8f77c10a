package client

import (
	"fmt"
	"math"

	"github.com/fitgrow/fitgrow-backend/internal/models"
)

// Metric is one of the four dashboard cards
type Metric = models.ActivityType

// Metrics lists the dashboard cards in display order
var Metrics = []Metric{models.ActivityCalories, models.ActivitySteps, models.ActivityWater, models.ActivitySleep}

// quickAdd is the increment of each card's quick-add button
var quickAdd = models.DailyStats{Calories: 100, Steps: 1000, Water: 0.5, Sleep: 1}

// Dashboard is the displayed state of today's values against the user's goals
type Dashboard struct {
	values models.DailyStats
	goals  models.Goals
}

// NewDashboard starts at zero. Zero goals fall back to the defaults.
func NewDashboard(goals models.Goals) *Dashboard {
	d := &Dashboard{}
	d.SetGoals(goals)
	return d
}

// SetGoals replaces the goals, keeping defaults for zero fields
func (d *Dashboard) SetGoals(goals models.Goals) {
	d.goals = models.DefaultGoals().Merge(goals)
}

// Goals returns the goals progress is measured against
func (d *Dashboard) Goals() models.Goals { return d.goals }

// Values returns the displayed values
func (d *Dashboard) Values() models.DailyStats { return d.values }

// Value returns one displayed value
func (d *Dashboard) Value(m Metric) float64 {
	return *field(&d.values, m)
}

// Progress is value/goal as a percentage, capped at 100
func (d *Dashboard) Progress(m Metric) float64 {
	goal := d.goalOf(m)
	if goal <= 0 {
		return 0
	}
	return math.Min(d.Value(m)/goal*100, 100)
}

// QuickAdd adds the card's fixed increment and returns the new value
func (d *Dashboard) QuickAdd(m Metric) float64 {
	v := field(&d.values, m)
	*v += *field(&quickAdd, m)
	return *v
}

// Apply shows server rollups. Zero fields leave the displayed value alone.
func (d *Dashboard) Apply(stats models.DailyStats) {
	for _, m := range Metrics {
		if v := *field(&stats, m); v != 0 {
			*field(&d.values, m) = v
		}
	}
}

// Reset zeroes every displayed value
func (d *Dashboard) Reset() {
	d.values = models.DailyStats{}
}

// Format renders a value the way the card shows it
func (d *Dashboard) Format(m Metric) string {
	switch m {
	case models.ActivityWater:
		return fmt.Sprintf("%.1fL", d.Value(m))
	case models.ActivitySleep:
		return fmt.Sprintf("%.1fh", d.Value(m))
	default:
		return fmt.Sprintf("%d", int64(math.Round(d.Value(m))))
	}
}

func (d *Dashboard) goalOf(m Metric) float64 {
	switch m {
	case models.ActivityCalories:
		return d.goals.Calories
	case models.ActivitySteps:
		return d.goals.Steps
	case models.ActivityWater:
		return d.goals.Water
	case models.ActivitySleep:
		return d.goals.Sleep
	}
	return 0
}

func field(s *models.DailyStats, m Metric) *float64 {
	switch m {
	case models.ActivityCalories:
		return &s.Calories
	case models.ActivitySteps:
		return &s.Steps
	case models.ActivityWater:
		return &s.Water
	case models.ActivitySleep:
		return &s.Sleep
	}
	var unused float64
	return &unused
}
