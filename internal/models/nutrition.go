package models

import "time"

// MealType classifies a nutrition entry
type MealType string

// Meal types
const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Macros holds the seven tracked nutrition values
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
}

// Add returns the field-wise sum of m and o
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Fiber:    m.Fiber + o.Fiber,
		Sugar:    m.Sugar + o.Sugar,
		Sodium:   m.Sodium + o.Sodium,
	}
}

// NutritionEntry is one logged food item owned by one user
type NutritionEntry struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	FoodName    string   `json:"foodName"`
	ServingSize string   `json:"servingSize,omitempty"`
	MealType    MealType `json:"mealType"`
	Macros
	Date time.Time `json:"date"`
}

// NutritionFilter narrows a meal listing. Start and End apply only together.
type NutritionFilter struct {
	Start *time.Time
	End   *time.Time
	Limit int
}
