package models

import "time"

// Default goal thresholds for new users
const (
	DefaultCaloriesGoal = 3000
	DefaultStepsGoal    = 10000
	DefaultWaterGoal    = 2.5
	DefaultSleepGoal    = 8
)

// Goals holds per-user targets. They drive progress display only.
type Goals struct {
	Calories float64 `json:"calories"`
	Steps    float64 `json:"steps"`
	Water    float64 `json:"water"`
	Sleep    float64 `json:"sleep"`
}

// DefaultGoals returns the goals assigned on signup
func DefaultGoals() Goals {
	return Goals{
		Calories: DefaultCaloriesGoal,
		Steps:    DefaultStepsGoal,
		Water:    DefaultWaterGoal,
		Sleep:    DefaultSleepGoal,
	}
}

// Merge returns g with every non-zero field of update applied
func (g Goals) Merge(update Goals) Goals {
	if update.Calories != 0 {
		g.Calories = update.Calories
	}
	if update.Steps != 0 {
		g.Steps = update.Steps
	}
	if update.Water != 0 {
		g.Water = update.Water
	}
	if update.Sleep != 0 {
		g.Sleep = update.Sleep
	}
	return g
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Not serialized
	Goals        Goals     `json:"goals"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the public view of a user returned by the auth routes
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Goals    Goals  `json:"goals"`
}

// Profile returns the public view of u
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Goals:    u.Goals,
	}
}
