package models

import "time"

// ActivityType is the kind of health event
type ActivityType string

// Activity types
const (
	ActivityCalories ActivityType = "calories"
	ActivitySteps    ActivityType = "steps"
	ActivityWater    ActivityType = "water"
	ActivitySleep    ActivityType = "sleep"
	ActivityWorkout  ActivityType = "workout"
)

// ActivityTypes lists every accepted activity type
var ActivityTypes = []ActivityType{
	ActivityCalories,
	ActivitySteps,
	ActivityWater,
	ActivitySleep,
	ActivityWorkout,
}

// Valid reports whether t is one of ActivityTypes
func (t ActivityType) Valid() bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Activity is a single timestamped measurement owned by one user
type Activity struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Type        ActivityType `json:"type"`
	Value       float64      `json:"value"`
	WorkoutType string       `json:"workoutType,omitempty"` // running, cycling, strength, etc.
	Duration    *float64     `json:"duration,omitempty"`    // in minutes
	Notes       string       `json:"notes,omitempty"`
	Date        time.Time    `json:"date"`
}

// ActivityFilter narrows an activity listing. Start and End apply only together.
type ActivityFilter struct {
	Start *time.Time
	End   *time.Time
	Type  ActivityType
	Limit int
}
