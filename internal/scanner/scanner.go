// Package scanner decodes the free-text answer of the food image analysis
// collaborator and scales it to a portion.
package scanner

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNoFood means the analysis did not name a food
var ErrNoFood = errors.New("analysis has no foodName")

// Analysis is the nine-field nutrition estimate for one photographed dish
type Analysis struct {
	FoodName    string  `json:"foodName"`
	ServingSize string  `json:"servingSize"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
}

// Parse strips markdown code fences around the answer and decodes it.
// Missing numbers are zero.
func Parse(text string) (*Analysis, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, fmt.Errorf("empty analysis")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	a.FoodName = strings.TrimSpace(a.FoodName)
	if a.FoodName == "" {
		return nil, ErrNoFood
	}
	return &a, nil
}

// Portion multiplies an analysis, 1 is the analysed serving
type Portion float64

// Presets are the portions offered next to the slider
var Presets = []Portion{0.5, 1, 1.5, 2}

// FromSlider converts a slider percentage to a portion
func FromSlider(percent float64) Portion {
	return Portion(percent / 100)
}

// Percent is the slider position for p
func (p Portion) Percent() int {
	return int(math.Round(float64(p) * 100))
}

func (p Portion) String() string {
	return fmt.Sprintf("%.1fx", float64(p))
}

// Meal is a scaled analysis in the shape of a meal log request
type Meal struct {
	FoodName    string  `json:"foodName"`
	ServingSize string  `json:"servingSize,omitempty"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
}

// Scale multiplies every number by p, rounded to whole units
func (a *Analysis) Scale(p Portion) Meal {
	scale := func(v float64) float64 { return math.Round(v * float64(p)) }
	return Meal{
		FoodName:    a.FoodName,
		ServingSize: a.ServingSize,
		Calories:    scale(a.Calories),
		Protein:     scale(a.Protein),
		Carbs:       scale(a.Carbs),
		Fat:         scale(a.Fat),
		Fiber:       scale(a.Fiber),
		Sugar:       scale(a.Sugar),
		Sodium:      scale(a.Sodium),
	}
}
