package models

// DailyStats is the per-type sum of today's activity values
type DailyStats struct {
	Calories float64 `json:"calories"`
	Steps    float64 `json:"steps"`
	Water    float64 `json:"water"`
	Sleep    float64 `json:"sleep"`
}

// WeeklyCalories holds calorie sums indexed by weekday, 0 = Sunday
type WeeklyCalories [7]float64

// DailyNutrition is today's entries together with their macro totals
type DailyNutrition struct {
	Meals  []NutritionEntry `json:"meals"`
	Totals Macros           `json:"totals"`
}

// ImportResult reports the outcome of a bulk health-data import
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
